// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// Attr represents each of the keys to be included in the output. Keys are
// gjson-style paths into a single row object as returned by the server.
type Attr struct {
	// The JSON key to extract from the row object.
	Key string
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool
	// The key to use in the output. This is also the column title when
	// output=text.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Timezone overrides TZ for the t transformation. It is set from config.
var Timezone string

// now is swapped in tests so relative times are stable.
var now = time.Now

var lengthRegex = regexp.MustCompile(`-?\d+`)

// FormatCurrency renders an amount with thousands separators and two
// decimals, e.g. 1234.5 -> "1,234.50".
func FormatCurrency(amount float64) string {
	return humanize.FormatFloat("#,###.##", amount)
}

func (a *Attr) Transform(value interface{}) interface{} {

	// Currency only applies to numbers; everything after it works on strings.
	if strings.ContainsAny(a.TransformSpec, "cC") {
		switch v := value.(type) {
		case float64:
			return FormatCurrency(v)
		case int:
			return FormatCurrency(float64(v))
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return FormatCurrency(f)
			}
		}
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	// Render a timestamp relative to now ("3 hours ago").
	if strings.ContainsAny(a.TransformSpec, "rR") {
		if t, err := time.Parse(time.RFC3339, result); err == nil {
			return humanize.RelTime(t, now(), "ago", "from now")
		}
		log.WithField("value", result).Debug("not a timestamp")
	}

	// Convert UTC time to local.
	if strings.ContainsAny(a.TransformSpec, "tT") {
		tz := Timezone
		if tz == "" {
			tz = os.Getenv("TZ")
		}

		// Only convert when a zone was named explicitly.
		if tz != "" {
			loc, err := time.LoadLocation(tz)
			if err == nil {
				t, err := time.Parse(time.RFC3339, result)
				if err == nil {
					result = t.In(loc).Format("2006-01-02T15:04:05MST")
				} else {
					log.Error("failed to parse time: " + result)
				}
			}
		}
	}

	// The case transformation appearing last wins. A global spec is prepended
	// to each attr's own, so --attrs '*::U,remarks::l' is lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Is it a length-based transformation? The last number wins for the same
	// reason as case.
	if a.TransformSpec != "" {
		match := lengthRegex.FindAllString(a.TransformSpec, -1)
		if len(match) != 0 {
			l, _ := strconv.Atoi(match[len(match)-1])
			abs := int(math.Abs(float64(l)))
			if len(result) > abs {
				if l < 0 {
					lr := abs/2 - 1
					if lr < 1 {
						lr = 1
					}
					result = result[0:lr] + ".." + result[len(result)-lr:]
				} else {
					result = result[:l]
				}
			}
		}
	}

	return result
}

type AttrList []Attr

// Return a string representation of the AttrList. This should match the format
// of the original --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses each spec from the --attrs flag and adds it to the AttrList.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	// There are three : delimited fields in each spec. The first is the key to
	// extract from the row. The second is the key to use in the output. The
	// third is the transformation spec. The latter two are optional and the
	// output key defaults to the last section of the row key.
	specs := strings.Split(value, ",")
specloop:
	for _, spec := range specs {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		// A leading ! excludes the attr from output while keeping it available
		// for filtering and sorting.
		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		if attr.Key == "" {
			return fmt.Errorf("empty attribute key in %q", spec)
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			if fields[outputIdx] != "" {
				attr.OutputKey = strings.TrimSpace(fields[outputIdx])
			} else {
				attr.OutputKey = attr.Key
			}
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// An attr that already exists (a command default or a double entry)
		// just takes the new OutputKey, Include and TransformSpec.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec inserts a global transform spec into the front of all
// attrs in the list.
func (alist *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	// If there is more than one global spec the first one wins.
	for a := range *alist {
		if (*alist)[a].Key == "*" {
			spec = (*alist)[a].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for a := range *alist {
		(*alist)[a].TransformSpec = spec + "," + (*alist)[a].TransformSpec
	}

	return nil
}

// Included returns the attrs that are rendered, in order.
func (alist AttrList) Included() AttrList {
	var result AttrList
	for _, a := range alist {
		if a.Include && a.Key != "*" {
			result = append(result, a)
		}
	}
	return result
}

// ByOutputKey finds the attr whose output key is k.
func (alist AttrList) ByOutputKey(k string) (Attr, bool) {
	for _, a := range alist {
		if a.OutputKey == k {
			return a, true
		}
	}
	return Attr{}, false
}

func (a *AttrList) Type() string {
	return "list"
}
