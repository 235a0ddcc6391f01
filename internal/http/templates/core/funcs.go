package core

import (
	"bytes"
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/target/parapharmacie-storefront/internal/domain/model"
	"github.com/target/parapharmacie-storefront/internal/http/uiutil"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"friendlyTime": friendlyTime,
		"longDate":     longDate,
		"price":        price,
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"seq":          seq,
		"statusClass":  statusClass,
		"statusLabel":  statusLabel,
		"truncateText": uiutil.TruncateWithEllipsis,
		"fieldError":   fieldError,
		"lower":        strings.ToLower,
	}

	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during execution.
		return template.HTML(buf.String()), nil
	}
	return funcs
}

func toTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case model.Timestamp:
		return v.Time
	case *model.Timestamp:
		if v != nil {
			return v.Time
		}
	}
	return time.Time{}
}

func friendlyTime(ts any) string { return uiutil.FormatFriendlyDateTime(toTime(ts)) }

func longDate(ts any) string { return uiutil.FormatLongDate(toTime(ts)) }

func price(v any) string {
	switch x := v.(type) {
	case decimal.Decimal:
		return uiutil.FormatPrice(x)
	case *decimal.Decimal:
		if x != nil {
			return uiutil.FormatPrice(*x)
		}
	case int:
		return uiutil.FormatPrice(decimal.NewFromInt(int64(x)))
	case int64:
		return uiutil.FormatPrice(decimal.NewFromInt(x))
	case float64:
		return uiutil.FormatPrice(decimal.NewFromFloat(x))
	}
	return uiutil.FormatPrice(decimal.Zero)
}

// seq returns 1..n, used by quantity pickers and pagers.
func seq(n int) []int {
	if n < 1 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func statusClass(s model.OrderStatus) string {
	switch s {
	case model.OrderStatusPending:
		return "badge-warning"
	case model.OrderStatusProcessing:
		return "badge-info"
	case model.OrderStatusCompleted:
		return "badge-success"
	case model.OrderStatusCancelled:
		return "badge-danger"
	default:
		return "badge-light"
	}
}

func statusLabel(s model.OrderStatus) string { return s.Label() }

// fieldError looks up an inline validation message; missing maps yield "".
func fieldError(errs map[string]string, field string) string {
	if errs == nil {
		return ""
	}
	return errs[field]
}
