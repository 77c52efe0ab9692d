package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/hitoshi/datecalc/internal/calc"
	"github.com/hitoshi/datecalc/internal/calendar"
	"github.com/hitoshi/datecalc/internal/clock"
	"github.com/hitoshi/datecalc/internal/display"
	"github.com/hitoshi/datecalc/internal/entry"
)

// CLI は単発コマンド（diff, epoch, now, demo）の入出力をまとめる。
type CLI struct {
	In    io.Reader
	Out   io.Writer
	Err   io.Writer
	Clock clock.Clock
	// Strict は--strictフラグの既定値。
	Strict bool
}

func (c *CLI) service(strict bool) *calc.Service {
	return calc.NewService(nil, c.Clock, nil, calc.Config{StrictValidation: strict})
}

func (c *CLI) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(c.Err)
	return fs
}

// Diff は--fromから--toまでの期間を表示する。
func (c *CLI) Diff(ctx context.Context, args []string) error {
	fs := c.flagSet("diff")
	from := fs.String("from", "", "start timestamp (YYYY-MM-DDTHH:MM:SS)")
	to := fs.String("to", "", "end timestamp (YYYY-MM-DDTHH:MM:SS)")
	strict := fs.Bool("strict", c.Strict, "reject timestamps that are not valid calendar dates")
	iso := fs.Bool("iso", false, "also print the ISO-8601 duration")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" || *to == "" {
		return errors.New("diff: --from and --to are required")
	}

	fromTS, err := entry.ParseISO(*from)
	if err != nil {
		return fmt.Errorf("diff: --from: %w", err)
	}
	toTS, err := entry.ParseISO(*to)
	if err != nil {
		return fmt.Errorf("diff: --to: %w", err)
	}

	result, err := c.service(*strict).Difference(ctx, fromTS, toTS)
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}

	p := display.NewWriter(c.Out)
	p.Line("From:")
	p.Timestamp(result.From)
	p.Line("To:")
	p.Timestamp(result.To)
	p.Separator()
	p.Duration(result.Duration())
	if *iso {
		p.Line("ISO-8601: " + result.Duration().ISO8601())
	}
	return p.Err()
}

// Epoch は--atの通算秒（0001-01-01T00:00:00起点）を表示する。
func (c *CLI) Epoch(ctx context.Context, args []string) error {
	fs := c.flagSet("epoch")
	at := fs.String("at", "", "timestamp (YYYY-MM-DDTHH:MM:SS)")
	strict := fs.Bool("strict", c.Strict, "reject timestamps that are not valid calendar dates")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *at == "" {
		return errors.New("epoch: --at is required")
	}

	ts, err := entry.ParseISO(*at)
	if err != nil {
		return fmt.Errorf("epoch: --at: %w", err)
	}
	secs, err := c.service(*strict).Epoch(ctx, ts)
	if err != nil {
		return fmt.Errorf("epoch: %w", err)
	}

	p := display.NewWriter(c.Out)
	p.Timestamp(ts)
	p.Line(fmt.Sprintf("Epoch seconds: %d", secs))
	return p.Err()
}

// Now は現在のローカル日時を表示する。
func (c *CLI) Now(ctx context.Context, args []string) error {
	fs := c.flagSet("now")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := display.NewWriter(c.Out)
	p.Timestamp(clock.Civil(c.Clock))
	return p.Err()
}

// Demo はゼロ値、固定日時、コピー、手入力、システム時刻、
// システム時刻 - 手入力、2021-01-01 - 2020-01-01 を順に表示する。
func (c *CLI) Demo(ctx context.Context, args []string) error {
	fs := c.flagSet("demo")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc := c.service(c.Strict)
	p := display.NewWriter(c.Out)

	p.Line("Using default constructor:")
	var zero calendar.CivilTimestamp
	p.Timestamp(zero)
	p.Separator()

	p.Line("Using parameterized constructor:")
	fixed := calendar.New(2025, 10, 22, 11, 25, 0)
	p.Timestamp(fixed)
	p.Separator()

	p.Line("Using copy constructor:")
	copied := fixed
	p.Timestamp(copied)
	p.Separator()

	p.Line("Entering a date manually:")
	if err := p.Err(); err != nil {
		return err
	}
	manual, err := entry.NewPrompter(c.In, c.Out).ReadTimestamp()
	if err != nil {
		return fmt.Errorf("demo: manual entry: %w", err)
	}
	p.Line("You entered:")
	p.Timestamp(manual)
	p.Separator()

	p.Line("Getting system date and time:")
	system := svc.Now()
	p.Line("Current system time:")
	p.Timestamp(system)
	p.Separator()

	p.Line("Subtracting dates (system time - manual time):")
	sinceManual, err := svc.Difference(ctx, manual, system)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	p.Duration(sinceManual.Duration())
	p.Separator()

	past := calendar.New(2020, 1, 1, 0, 0, 0)
	future := calendar.New(2021, 1, 1, 0, 0, 0)
	p.Line("Subtracting dates (2021-01-01 - 2020-01-01):")
	leap, err := svc.Difference(ctx, past, future)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	p.Duration(leap.Duration())

	return p.Err()
}
