package interp

import (
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"

	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
)

func init() {
	register("now", biNow)
	register("to_unix_timestamp", biToUnixTimestamp)
	register("format_timestamp", biFormatTimestamp)
}

// now is the tree's sole nondeterministic node: wall-clock milliseconds
// since the Unix epoch, drawn from the injected clock rather than time.Now
// directly so evaluation stays reproducible under a frozen test clock.
func biNow(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	return jsonvalue.Int(ev.Clock.NowMillis()), nil
}

// to_unix_timestamp parses a timestamp against a strftime-style format,
// returning milliseconds since the epoch. A literal "%z" in the format
// parses in the local zone, so an offset in the text applies; otherwise the
// text is parsed as UTC. In both cases the optional offset_seconds argument
// (default 0) is then subtracted from the parsed instant.
func biToUnixTimestamp(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "to_unix_timestamp")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	format, err := requireString(ev, args[1], n.SpanVal, "to_unix_timestamp")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	offsetSeconds := int64(0)
	if len(args) == 3 {
		off, err := requireNumber(ev, args[2], n.SpanVal, "to_unix_timestamp")
		if err != nil {
			return jsonvalue.Value{}, err
		}
		offsetSeconds = int64(off)
	}

	loc := time.UTC
	if strings.Contains(format, "%z") {
		loc = time.Local
	}
	t, err := timefmt.ParseInLocation(s, format, loc)
	if err != nil {
		return jsonvalue.Value{}, ev.errf(kerrors.KindConversionFailed, n.SpanVal, "to_unix_timestamp: %s", err.Error())
	}
	ms := t.UnixMilli() - offsetSeconds*1000
	return jsonvalue.Int(ms), nil
}

// format_timestamp renders milliseconds-since-epoch as UTC text per a
// strftime-style format.
func biFormatTimestamp(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	ms, err := requireNumber(ev, args[0], n.SpanVal, "format_timestamp")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	format, err := requireString(ev, args[1], n.SpanVal, "format_timestamp")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return jsonvalue.Str(timefmt.Format(t, format)), nil
}
