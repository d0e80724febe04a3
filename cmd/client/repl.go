package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/atinyakov/MediaKeeper/internal/client/app"
	"github.com/atinyakov/MediaKeeper/internal/client/auth"
	"github.com/atinyakov/MediaKeeper/internal/client/navigation"
	"github.com/atinyakov/MediaKeeper/internal/client/prompt"
	"github.com/atinyakov/MediaKeeper/internal/models"
)

const helpText = `Available commands:
  login | register          authenticate
  logout | whoami
  list [movie|series] [watched|unwatched] [text]
  show <id> | add | edit <id> | rate <id> <0-10> | remove <id>
  refresh | stats | go <route> | help | exit`

type shell struct {
	app    *app.App
	nav    *navigation.Log
	prompt *prompt.Prompter
	out    io.Writer
}

// run is the interactive loop. It returns on "exit", end of input or ctx done.
func (s *shell) run(ctx context.Context) {
	for ctx.Err() == nil {
		line, err := s.prompt.Line(s.ps1())
		if err != nil {
			fmt.Fprintln(s.out)
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			fmt.Fprintln(s.out, "Bye")
			return
		}
		if err := s.exec(ctx, args[0], args[1:]); err != nil {
			s.fail(err)
		}
	}
}

func (s *shell) ps1() string {
	user := "guest"
	if id := s.app.Current(); id != nil {
		user = id.Username
	}
	return fmt.Sprintf("mediakeeper[%s %s]> ", user, s.nav.Current().Path())
}

func (s *shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "login", "register":
		creds, err := s.prompt.Credentials()
		if err != nil {
			return err
		}
		authenticate := s.app.Login
		if cmd == "register" {
			authenticate = s.app.Register
		}
		id, err := authenticate(ctx, creds)
		if id.Valid() {
			fmt.Fprintf(s.out, "Logged in as %s (id %d).\n", id.Username, id.ID)
		}
		return err
	case "logout":
		if err := s.app.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Logged out.")
	case "whoami":
		if id := s.app.Current(); id != nil {
			fmt.Fprintf(s.out, "%s (id %d)\n", id.Username, id.ID)
		} else {
			fmt.Fprintln(s.out, "Not logged in.")
		}
	case "list", "ls":
		f, err := parseFilter(args)
		if err != nil {
			return err
		}
		s.printEntries(s.app.Entries(f))
	case "show":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		e, err := s.app.Entry(id)
		if err != nil {
			return err
		}
		s.printEntry(e)
	case "add":
		e, err := s.prompt.Entry(nil)
		if err != nil {
			return err
		}
		saved, err := s.app.Save(ctx, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Added #%d.\n", *saved.ID)
	case "edit":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		cur, err := s.app.Entry(id)
		if err != nil {
			return err
		}
		e, err := s.prompt.Entry(&cur)
		if err != nil {
			return err
		}
		if _, err := s.app.Save(ctx, e); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Updated.")
	case "rate":
		if len(args) != 2 {
			return errors.New("usage: rate <id> <0-10>")
		}
		id, err := parseID(args[:1])
		if err != nil {
			return err
		}
		rating, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("rating %q is not a number", args[1])
		}
		if _, err := s.app.Rate(ctx, id, rating); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Rated.")
	case "remove", "rm":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		ok, err := s.prompt.Confirm(fmt.Sprintf("Remove #%d?", id))
		if err != nil || !ok {
			return err
		}
		if err := s.app.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Removed.")
	case "refresh":
		entries, err := s.app.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%d entries.\n", len(entries))
	case "stats":
		c := s.app.Counts()
		fmt.Fprintf(s.out, "movies: %d, series: %d\n", c[models.Movie], c[models.Series])
	case "go":
		if len(args) != 1 {
			return errors.New("usage: go <route>")
		}
		r, err := navigation.ParseRoute(args[0])
		if err != nil {
			return err
		}
		return s.app.Navigate(r)
	default:
		return fmt.Errorf("unknown command %q, type 'help' for a list of commands", cmd)
	}
	return nil
}

func (s *shell) fail(err error) {
	var authErr *auth.Error
	switch {
	case errors.As(err, &authErr):
		fmt.Fprintln(s.out, authErr.Message)
	case errors.Is(err, app.ErrNotAuthenticated):
		fmt.Fprintln(s.out, "Please log in first.")
	default:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *shell) printEntries(entries []models.MediaEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No entries.")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tGENRE\tWATCHED\tRATING")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			idString(e.ID), e.Type, e.Title, e.Genre, yesNo(e.Watched), ratingString(e.Rating))
	}
	_ = tw.Flush()
}

func (s *shell) printEntry(e models.MediaEntry) {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", idString(e.ID))
	fmt.Fprintf(tw, "Title\t%s\n", e.Title)
	fmt.Fprintf(tw, "Type\t%s\n", e.Type)
	fmt.Fprintf(tw, "Genre\t%s\n", e.Genre)
	fmt.Fprintf(tw, "Watched\t%s\n", yesNo(e.Watched))
	fmt.Fprintf(tw, "Rating\t%s\n", ratingString(e.Rating))
	if e.Comment != nil {
		fmt.Fprintf(tw, "Comment\t%s\n", *e.Comment)
	}
	if e.TrailerRef != nil {
		fmt.Fprintf(tw, "Trailer\t%s\n", *e.TrailerRef)
	}
	if e.RatingDate != nil {
		fmt.Fprintf(tw, "Rated on\t%s\n", e.RatingDate.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

// parseFilter reads list arguments: an optional type, an optional watched
// state, and the rest as a text query.
func parseFilter(args []string) (models.Filter, error) {
	var (
		f     models.Filter
		query []string
	)
	for _, a := range args {
		switch strings.ToLower(a) {
		case "movie", "movies":
			f.Type = models.MoviesOnly
		case "series", "show", "shows":
			f.Type = models.SeriesOnly
		case "all", "any":
			f.Type = models.AnyType
		case "watched", "seen":
			f.Watched = models.Ptr(true)
		case "unwatched", "unseen":
			f.Watched = models.Ptr(false)
		default:
			query = append(query, a)
		}
	}
	f.Query = strings.Join(query, " ")
	return f, nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one entry id")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", args[0])
	}
	return id, nil
}

func idString(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func ratingString(r *float64) string {
	if r == nil {
		return "-"
	}
	return strconv.FormatFloat(*r, 'g', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
