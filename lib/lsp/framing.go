// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxMessageSize bounds a single message. A whole BUILD file arrives
// in one didOpen, so the limit is generous.
const maxMessageSize = 32 * 1024 * 1024

// readMessage reads one base-protocol message: header lines
// terminated by an empty line, then exactly Content-Length bytes of
// payload. io.EOF before the first header byte means the client hung
// up cleanly.
func readMessage(reader *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" && length == -1 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("bad Content-Length %q: %w", strings.TrimSpace(value), err)
			}
			length = n
		}
		// Content-Type is the only other defined header; its default
		// (utf-8 JSON) is the only encoding supported, so it is
		// accepted and ignored.
	}
	if length < 0 {
		return nil, fmt.Errorf("message without Content-Length header")
	}
	if length > maxMessageSize {
		return nil, fmt.Errorf("message of %d bytes exceeds the %d byte limit", length, maxMessageSize)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, fmt.Errorf("read %d-byte payload: %w", length, err)
	}
	return payload, nil
}

// writeMessage frames payload with a Content-Length header.
func writeMessage(writer io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(writer, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}
