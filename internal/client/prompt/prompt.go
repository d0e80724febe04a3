// Package prompt reads credentials and media entries line by line for the
// interactive shell.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/MediaKeeper/internal/models"
)

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// New returns a Prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Line prints question and returns the next input line without surrounding
// spaces. It returns io.EOF when input is exhausted.
func (p *Prompter) Line(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Credentials asks for a username and a password.
func (p *Prompter) Credentials() (models.Credentials, error) {
	username, err := p.Line("Username: ")
	if err != nil {
		return models.Credentials{}, err
	}
	password, err := p.Line("Password: ")
	if err != nil {
		return models.Credentials{}, err
	}
	return models.Credentials{Username: username, Password: password}, nil
}

// Entry asks for every editable field of a media entry. With a non-nil base
// an empty answer keeps the current value, and "-" clears an optional one.
// The result is validated before it is returned.
func (p *Prompter) Entry(base *models.MediaEntry) (models.MediaEntry, error) {
	var e models.MediaEntry
	if base != nil {
		e = base.Clone()
	}

	title, err := p.Line(label("Title", e.Title))
	if err != nil {
		return e, err
	}
	if title != "" {
		e.Title = title
	}

	genre, err := p.Line(label("Genre", e.Genre))
	if err != nil {
		return e, err
	}
	if genre != "" {
		e.Genre = genre
	}

	typ, err := p.Line(label("Type (movie/series)", strings.ToLower(string(e.Type))))
	if err != nil {
		return e, err
	}
	if typ != "" {
		if e.Type, err = models.ParseMediaType(typ); err != nil {
			return e, err
		}
	}

	watched, err := p.Line(label("Watched (y/n)", yesNo(e.Watched)))
	if err != nil {
		return e, err
	}
	if watched != "" {
		if e.Watched, err = parseYesNo(watched); err != nil {
			return e, err
		}
	}
	if !e.Watched {
		e.Rating = nil
	} else {
		rating, err := p.Line(label("Rating 0-10", formatRating(e.Rating)))
		if err != nil {
			return e, err
		}
		switch rating {
		case "":
		case "-":
			e.Rating = nil
		default:
			v, err := strconv.ParseFloat(rating, 64)
			if err != nil {
				return e, &models.ValidationError{Field: "rating", Reason: fmt.Sprintf("%q is not a number", rating)}
			}
			e.Rating = &v
		}
	}

	comment, err := p.Line(label("Comment", deref(e.Comment)))
	if err != nil {
		return e, err
	}
	switch comment {
	case "":
	case "-":
		e.Comment = nil
	default:
		e.Comment = &comment
	}

	return e, e.Validate()
}

// Confirm asks a yes/no question; anything but yes is no.
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Line(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	ok, err := parseYesNo(answer)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

func label(name, current string) string {
	if current == "" {
		return name + ": "
	}
	return fmt.Sprintf("%s [%s]: ", name, current)
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

var errYesNo = errors.New("answer y or n")

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return false, errYesNo
}

func formatRating(r *float64) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(*r, 'g', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
