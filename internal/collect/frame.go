package collect

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

type frame struct {
	Readings []Reading `json:"readings"`
}

func EncodeFrame(readings []Reading) ([]byte, error) {
	data, err := json.Marshal(frame{Readings: readings})
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeFeed, err, "encode frame")
	}
	return data, nil
}

// DecodeFrame accepts {"readings": [...]}, a bare array, or a single reading
// object. Field aliases name, v and ts are understood; a missing time
// decodes as 0 for the caller to stamp.
func DecodeFrame(data []byte) ([]Reading, error) {
	if !gjson.ValidBytes(data) {
		return nil, errdef.New(errdef.CodeFeed, "frame is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	var items []gjson.Result
	switch {
	case root.IsArray():
		items = root.Array()
	case root.Get("readings").IsArray():
		items = root.Get("readings").Array()
	case root.IsObject():
		items = []gjson.Result{root}
	default:
		return nil, errdef.New(errdef.CodeFeed, "unexpected frame type %s", root.Type)
	}

	out := make([]Reading, 0, len(items))
	for i, item := range items {
		series := firstOf(item, "series", "name")
		value := firstOf(item, "value", "v")
		if series.Type != gjson.String || series.Str == "" {
			return nil, errdef.New(errdef.CodeFeed, "reading %d: missing series name", i)
		}
		if value.Type != gjson.Number {
			return nil, errdef.New(errdef.CodeFeed, "reading %d (%s): value is not a number", i, series.Str)
		}
		r := Reading{
			Series: series.Str,
			Value:  value.Num,
			Kind:   Kind(item.Get("kind").Str),
		}
		if ts := firstOf(item, "time", "ts"); ts.Type == gjson.Number {
			r.Time = ts.Num
		}
		out = append(out, r)
	}
	return out, nil
}

func firstOf(item gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := item.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}
