// Package attachments encodes the ordered list of documents attached to an
// employee into the single document_path text field, as name|path pairs
// joined with ';'. No other package splits or joins these delimiters.
package attachments

import (
	"fmt"
	"strings"

	e "github.com/gartstein/vacation/internal/vacation/errors"
)

const (
	PairSeparator  = ";"
	FieldSeparator = "|"
)

// Attachment references an externally stored document.
type Attachment struct {
	Name string
	Path string
}

// Decode splits text into attachments in stored order. Empty text decodes to nil.
func Decode(text string) []Attachment {
	if text == "" {
		return nil
	}
	pairs := strings.Split(text, PairSeparator)
	out := make([]Attachment, 0, len(pairs))
	for _, pair := range pairs {
		name, path, _ := strings.Cut(pair, FieldSeparator)
		out = append(out, Attachment{Name: name, Path: path})
	}
	return out
}

// Encode joins attachments into the stored form. An empty list encodes to "",
// which the store persists as NULL.
func Encode(list []Attachment) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = a.Name + FieldSeparator + a.Path
	}
	return strings.Join(parts, PairSeparator)
}

// Append adds one attachment at the end.
func Append(text, name, path string) (string, error) {
	if err := checkDelimiters(name, path); err != nil {
		return text, err
	}
	list := append(Decode(text), Attachment{Name: name, Path: path})
	return Encode(list), nil
}

// RemoveAt drops the attachment at index.
func RemoveAt(text string, index int) (string, error) {
	list := Decode(text)
	if index < 0 || index >= len(list) {
		return text, fmt.Errorf("%w: index %d, %d attachments", e.ErrOutOfRange, index, len(list))
	}
	list = append(list[:index], list[index+1:]...)
	return Encode(list), nil
}

// RenameLast replaces the display name of the final attachment, keeping its path.
func RenameLast(text, newName string) (string, error) {
	list := Decode(text)
	if len(list) == 0 {
		return text, e.ErrEmptyAttachmentList
	}
	if err := checkDelimiters(newName, ""); err != nil {
		return text, err
	}
	list[len(list)-1].Name = newName
	return Encode(list), nil
}

// Current returns the name shown as "the document" of a record: the last one.
func Current(list []Attachment) string {
	if len(list) == 0 {
		return ""
	}
	return list[len(list)-1].Name
}

func checkDelimiters(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, PairSeparator+FieldSeparator) {
			return fmt.Errorf("%w: %q contains %q or %q", e.ErrValidation, v, PairSeparator, FieldSeparator)
		}
	}
	return nil
}
