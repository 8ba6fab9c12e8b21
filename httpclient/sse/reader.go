// Package sse reads Server-Sent Events from a streaming response body.
package sse

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"io"
	"strings"
)

// MaxEventSize bounds one line of the stream. goinfer's terminal result
// event carries the whole generated text on a single data line.
const MaxEventSize = 4 << 20

// ErrLineTooLong is returned when a line exceeds MaxEventSize.
var ErrLineTooLong = stderrors.New("sse: line exceeds maximum event size")

// Event is one dispatched server-sent event.
type Event struct {
	// Event is the "event:" field, empty for data-only events.
	Event string
	// Data holds the "data:" lines joined with newlines.
	Data string
	// ID is the "id:" field.
	ID string
}

// Reader yields the events of one stream.
type Reader interface {
	// Next returns the next event, or io.EOF once the stream is drained.
	Next() (*Event, error)
	// Close closes the body.
	Close() error
}

type reader struct {
	br   *bufio.Reader
	body io.ReadCloser
	line []byte
}

// NewReader reads events from body. Closing the reader closes body.
func NewReader(body io.ReadCloser) Reader {
	return &reader{br: bufio.NewReaderSize(body, 64*1024), body: body}
}

// Next accumulates fields until a blank line. An event still pending when
// the connection closes is dispatched; one without data is dropped.
func (r *reader) Next() (*Event, error) {
	var (
		ev      Event
		data    bytes.Buffer
		hasData bool
	)
	dispatch := func() *Event {
		ev.Data = data.String()
		return &ev
	}
	for {
		line, err := r.readLine()
		if err != nil && !stderrors.Is(err, io.EOF) {
			return nil, err
		}
		eof := err != nil

		switch {
		case len(line) == 0:
			if hasData {
				return dispatch(), nil
			}
			ev = Event{}
		case line[0] == ':':
		default:
			field, value := parseSSELine(string(line))
			switch field {
			case "data":
				if hasData {
					data.WriteByte('\n')
				}
				data.WriteString(value)
				hasData = true
			case "event":
				ev.Event = value
			case "id":
				ev.ID = value
			}
		}

		if eof {
			if hasData {
				return dispatch(), nil
			}
			return nil, io.EOF
		}
	}
}

// readLine returns the next line without its terminator. A final line with
// no terminator comes back together with io.EOF.
func (r *reader) readLine() ([]byte, error) {
	r.line = r.line[:0]
	for {
		chunk, err := r.br.ReadSlice('\n')
		r.line = append(r.line, chunk...)
		if len(r.line) > MaxEventSize {
			return nil, ErrLineTooLong
		}
		if stderrors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		line := bytes.TrimSuffix(bytes.TrimSuffix(r.line, []byte("\n")), []byte("\r"))
		return line, err
	}
}

// Close closes the body.
func (r *reader) Close() error {
	return r.body.Close()
}

// parseSSELine splits "field: value". One leading space of the value is
// dropped; a line without a colon is a field with an empty value.
func parseSSELine(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
