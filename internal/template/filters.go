package template

import (
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/helpdesk-io/helpdesk-web/internal/format"
)

var registerOnce sync.Once

// registerFilters installs the helpdesk filters into pongo2's global filter
// table. The language filters take the page language as their argument:
//
//	{{ ticket.CreatedAt|localdate:Lang }}
func registerFilters() {
	registerOnce.Do(func() {
		filters := map[string]pongo2.FilterFunction{
			"localdate":     filterLocalDate,
			"localdatetime": filterLocalDateTime,
			"timeago":       filterTimeAgo,
			"markdown":      filterMarkdown,
			"sla_bucket":    filterSLABucket,
			"sla_tone":      filterSLATone,
			"number":        filterNumber,
			"percent":       filterPercent,
		}
		for name, fn := range filters {
			if pongo2.FilterExists(name) {
				_ = pongo2.ReplaceFilter(name, fn)
				continue
			}
			_ = pongo2.RegisterFilter(name, fn)
		}
	})
}

// timeOf unwraps time.Time and *time.Time values. ok is false for nil.
func timeOf(v *pongo2.Value) (time.Time, bool) {
	switch t := v.Interface().(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

func filterLocalDate(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, ok := timeOf(in)
	if !ok {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(format.Date(t, param.String())), nil
}

func filterLocalDateTime(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, ok := timeOf(in)
	if !ok {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(format.DateTime(t, param.String())), nil
}

func filterTimeAgo(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	t, ok := timeOf(in)
	if !ok {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(format.Relative(t)), nil
}

func filterMarkdown(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(format.Markdown(in.String())), nil
}

func filterSLABucket(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(format.SLABucket(in.Integer())), nil
}

func filterSLATone(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(format.SLATone(format.SLABucket(in.Integer()))), nil
}

func filterNumber(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(format.Number(int64(in.Integer()), param.String())), nil
}

func filterPercent(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(format.Percent(in.Float())), nil
}
