// Package command parses and applies the add/rm command language.
package command

import (
	"fmt"
	"strings"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/shopspring/decimal"
)

// Op is the operation of a command.
type Op int

const (
	Add Op = iota
	Remove
)

func (o Op) String() string {
	if o == Remove {
		return "rm"
	}
	return "add"
}

// Command is a parsed command line.
type Command struct {
	Op    Op
	ID    domain.TokenID
	Flags domain.Membership
	// Holding is set iff Op is Add and Flags contains Portfolio.
	Holding *domain.Holding
}

func (c Command) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", c.Op, c.ID, flagText(c.Flags))
	if c.Holding != nil {
		fmt.Fprintf(&b, " %s %s", c.Holding.Amount, c.Holding.AvgBuyPrice)
	}
	return b.String()
}

func flagText(m domain.Membership) string {
	switch m {
	case domain.Watchlist:
		return "-w"
	case domain.Portfolio:
		return "-p"
	default:
		return "-wp"
	}
}

var flags = map[string]domain.Membership{
	"-w":  domain.Watchlist,
	"-p":  domain.Portfolio,
	"-wp": domain.Both,
	"-pw": domain.Both,
}

// Parse turns command text into a Command.
//
//	add <id> [-w | -p <amount> <price> | -wp <amount> <price>]
//	rm  <id> [-w | -p | -wp]
//
// Without a flag add means -w and rm means -wp. Keywords and flags are case
// sensitive; the identifier is normalized.
func Parse(input string) (Command, error) {
	fields := strings.Fields(input)
	fail := func(format string, args ...any) (Command, error) {
		return Command{}, &domain.SyntaxError{Input: input, Msg: fmt.Sprintf(format, args...)}
	}

	if len(fields) == 0 {
		return fail("empty command")
	}

	var cmd Command
	switch fields[0] {
	case "add":
		cmd.Op = Add
	case "rm":
		cmd.Op = Remove
	default:
		return fail("unknown command %q (expected add or rm)", fields[0])
	}

	if len(fields) < 2 {
		return fail("%s: missing token identifier", cmd.Op)
	}
	if strings.HasPrefix(fields[1], "-") {
		return fail("%s: missing token identifier before %s", cmd.Op, fields[1])
	}
	cmd.ID = domain.NormalizeID(fields[1])

	rest := fields[2:]
	if len(rest) == 0 {
		if cmd.Op == Add {
			cmd.Flags = domain.Watchlist
		} else {
			cmd.Flags = domain.Both
		}
		return cmd, nil
	}

	m, ok := flags[rest[0]]
	if !ok {
		return fail("%s: unknown flag %q (expected -w, -p or -wp)", cmd.Op, rest[0])
	}
	cmd.Flags = m
	args := rest[1:]

	if cmd.Op == Remove || !m.Has(domain.Portfolio) {
		if len(args) > 0 {
			return fail("%s %s: unexpected arguments %q", cmd.Op, rest[0], strings.Join(args, " "))
		}
		return cmd, nil
	}

	switch len(args) {
	case 0:
		return fail("add %s: missing amount and price", rest[0])
	case 1:
		return fail("add %s: missing price", rest[0])
	case 2:
	default:
		return fail("add %s: unexpected arguments %q", rest[0], strings.Join(args[2:], " "))
	}

	amount, err := parseNonNegative("amount", args[0])
	if err != nil {
		return fail("%v", err)
	}
	price, err := parseNonNegative("price", args[1])
	if err != nil {
		return fail("%v", err)
	}
	cmd.Holding = &domain.Holding{Amount: amount, AvgBuyPrice: price}
	return cmd, nil
}

func parseNonNegative(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s %q is not a number", field, s)
	}
	if !domain.InRange(d) {
		return decimal.Decimal{}, fmt.Errorf("%s %q is out of range", field, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s must not be negative, got %s", field, s)
	}
	return d, nil
}
