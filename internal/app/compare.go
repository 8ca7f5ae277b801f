package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/PandaWhoCodes/youversion/pkg/apierr"
	"github.com/PandaWhoCodes/youversion/pkg/result"
	"github.com/PandaWhoCodes/youversion/pkg/youversion"
)

func init() {
	register(command{
		name:    "compare",
		usage:   "[-versions 111,1,206] [-parallel n] [-format text|html] LOCATOR",
		summary: "fetch one passage from several versions concurrently",
		run:     runCompare,
	})
}

// comparison is one row of compare output.
type comparison struct {
	VersionID int                 `json:"version_id"`
	Passage   *youversion.Passage `json:"passage,omitempty"`
	Error     string              `json:"error,omitempty"`

	failure apierr.DomainError
}

func runCompare(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("compare")
	versions := fs.String("versions", strconv.Itoa(a.cfg.Defaults.VersionID), "comma separated version ids")
	parallel := fs.Int("parallel", 4, "maximum requests in flight")
	opts := a.passageFlags(fs)
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	if *parallel < 1 {
		return fmt.Errorf("%w: -parallel must be positive", ErrUsage)
	}

	var ids []int
	for _, s := range strings.Split(*versions, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		id, err := intArg("-versions", s)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: -versions is empty", ErrUsage)
	}

	var rows []comparison
	err = youversion.WithAsync(ctx, a.cfg.API.Key, func(ctx context.Context, c *youversion.AsyncClient) error {
		rows, err = compare(ctx, a, c, ids, pos[0], opts(), *parallel)
		return err
	}, a.options()...)
	if err != nil {
		return err
	}

	var (
		failed int
		first  apierr.DomainError
	)
	for _, r := range rows {
		if r.Passage == nil {
			if first == nil {
				first = r.failure
			}
			failed++
		}
	}
	if err := a.emit(rows, func(w io.Writer) {
		for i, r := range rows {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "[%d] ", r.VersionID)
			if r.Passage == nil {
				fmt.Fprintln(w, r.Error)
				continue
			}
			writePassage(w, *r.Passage)
		}
	}); err != nil {
		return err
	}
	if failed == len(rows) {
		return fmt.Errorf("no version returned %s: %w", pos[0], first)
	}
	return nil
}

// compare issues one GetPassage per version and waits for all of them. A
// domain failure is reported in its row; an infrastructure error cancels
// the remaining calls.
func compare(ctx context.Context, a *App, c *youversion.AsyncClient, ids []int, locator string, opts *youversion.PassageOptions, parallel int) ([]comparison, error) {
	rows := make([]comparison, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, id := range ids {
		g.Go(func() error {
			res, err := attempt(gctx, a, func(ctx context.Context) (result.Result[youversion.Passage], error) {
				return c.GetPassage(ctx, id, locator, opts).Await(ctx)
			})
			if err != nil {
				return fmt.Errorf("version %d: %w", id, err)
			}
			rows[i] = comparison{VersionID: id}
			res.Match(func(p youversion.Passage) {
				rows[i].Passage = &p
			}, func(derr apierr.DomainError) {
				a.log.Debug("compare failure", slog.Int("version", id), slog.Any("error", derr))
				rows[i].Error = derr.Error()
				rows[i].failure = derr
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
