package main

import (
	"fmt"
	"io"
	"strings"

	"http-relay-go/internal/composer"
)

// stdinBody is the -d value that reads the body from standard input.
const stdinBody = "@-"

func buildForm(cli *CLI, stdin io.Reader) (composer.Form, error) {
	form := composer.Form{
		Method: cli.Method,
		URL:    cli.URL,
		Body:   cli.Data,
	}

	for _, raw := range cli.Header {
		row, err := parseHeaderRow(raw)
		if err != nil {
			return composer.Form{}, err
		}
		form.Headers = append(form.Headers, row)
	}

	if cli.Data == stdinBody {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return composer.Form{}, fmt.Errorf("read body from stdin: %w", err)
		}
		form.Body = string(b)
	}
	return form, nil
}

// parseHeaderRow splits "Name: value" at the first colon. The value keeps
// everything after a single optional space.
func parseHeaderRow(raw string) (composer.HeaderRow, error) {
	name, value, ok := strings.Cut(raw, ":")
	if !ok {
		return composer.HeaderRow{}, fmt.Errorf("header %q: expected \"Name: value\"", raw)
	}
	return composer.HeaderRow{
		Key:   strings.TrimSpace(name),
		Value: strings.TrimPrefix(value, " "),
	}, nil
}
