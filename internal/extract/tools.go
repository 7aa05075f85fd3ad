// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"os/exec"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(name string, args ...string) ([]byte, error)
	Run(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (o *osExecutor) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// toolCmd is one candidate command line; %s placeholders are not used,
// the input path is appended via the args function.
type toolCmd struct {
	bin  string
	args func(input string, extra ...string) []string
}

// legacyDocTools convert .doc files to plain text on stdout, tried in order.
var legacyDocTools = []toolCmd{
	{bin: "antiword", args: func(in string, _ ...string) []string { return []string{in} }},
	{bin: "catdoc", args: func(in string, _ ...string) []string { return []string{in} }},
}

// pdfTools convert .pdf files to plain text on stdout, tried in order.
var pdfTools = []toolCmd{
	{bin: "pdftotext", args: func(in string, _ ...string) []string { return []string{"-layout", in, "-"} }},
}

// unpackTools extract an archive into a directory, tried in order. extra[0]
// is the destination directory.
var unpackTools = []toolCmd{
	{bin: "unrar", args: func(in string, extra ...string) []string { return []string{"x", "-y", in, extra[0]} }},
	{bin: "bsdtar", args: func(in string, extra ...string) []string { return []string{"-xf", in, "-C", extra[0]} }},
	{bin: "unar", args: func(in string, extra ...string) []string { return []string{"-quiet", "-o", extra[0], in} }},
}

// Tools runs external converter binaries with per-task fallback chains:
// the first candidate found on PATH that succeeds wins.
type Tools struct {
	exec executor
}

// NewTools creates a Tools backed by os/exec.
func NewTools() *Tools {
	return &Tools{exec: &osExecutor{}}
}

// convertOutput runs the first available candidate against input and returns
// its stdout.
func (t *Tools) convertOutput(candidates []toolCmd, input string) ([]byte, error) {
	var lastErr error
	found := false
	for _, c := range candidates {
		if _, err := t.exec.LookPath(c.bin); err != nil {
			continue
		}
		found = true
		out, err := t.exec.Output(c.bin, c.args(input)...)
		if err == nil {
			return out, nil
		}
		lastErr = fmt.Errorf("%s: %w", c.bin, err)
	}
	if !found {
		return nil, fmt.Errorf("no converter available, tried %s", toolNames(candidates))
	}
	return nil, lastErr
}

// unpack extracts the archive at input into dir using the first available
// candidate.
func (t *Tools) unpack(input, dir string) error {
	var lastErr error
	found := false
	for _, c := range unpackTools {
		if _, err := t.exec.LookPath(c.bin); err != nil {
			continue
		}
		found = true
		if err := t.exec.Run(c.bin, c.args(input, dir)...); err == nil {
			return nil
		} else {
			lastErr = fmt.Errorf("%s: %w", c.bin, err)
		}
	}
	if !found {
		return fmt.Errorf("no unpacker available, tried %s", toolNames(unpackTools))
	}
	return lastErr
}

func toolNames(candidates []toolCmd) string {
	names := ""
	for i, c := range candidates {
		if i > 0 {
			names += ", "
		}
		names += c.bin
	}
	return names
}
