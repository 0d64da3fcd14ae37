package httpsource

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Jeffail/gabs"
	"github.com/goliatone/go-variant-patients/patients"
	"github.com/mitchellh/mapstructure"
)

// Decode turns a preload body into an Entry. Filters missing from the body
// become empty slices, missing totals become zero, and null record fields
// become empty strings. A body of the form {"error": "..."} is reported as a
// NetworkError even though the server answers it with 200.
func Decode(tech patients.Technology, key string, body []byte) (patients.Entry, error) {
	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return patients.Entry{}, &patients.NetworkError{
			Technology: tech, Key: key, Status: http.StatusOK,
			Err: fmt.Errorf("decode preload response: %w", err),
		}
	}

	if msg, ok := parsed.Path("error").Data().(string); ok && msg != "" {
		return patients.Entry{}, &patients.NetworkError{
			Technology: tech, Key: key, Status: http.StatusOK, Message: msg,
		}
	}

	homo := toInt(parsed.Path("homo_count").Data())
	hetero := toInt(parsed.Path("hetero_count").Data())
	variantKey, _ := parsed.Path("variant_key").Data().(string)

	entry := patients.Entry{
		Technology: tech,
		Key:        key,
		VariantKey: variantKey,
		Slices:     make(map[patients.Filter]patients.Slice, 3),
	}

	for _, f := range patients.Filters() {
		node := parsed.Search("result", string(f))
		pages, err := decodePages(node.Search("pages"))
		if err != nil {
			return patients.Entry{}, &patients.NetworkError{
				Technology: tech, Key: key, Status: http.StatusOK,
				Err: fmt.Errorf("decode %s pages: %w", f, err),
			}
		}
		entry.Slices[f] = patients.Slice{
			Pages:        pages,
			HomoCount:    homo,
			HeteroCount:  hetero,
			TotalPages:   toInt(node.Search("total_pages").Data()),
			TotalMatched: toInt(node.Search("total").Data()),
		}
	}

	return entry, nil
}

func decodePages(node *gabs.Container) ([][]patients.Record, error) {
	if node == nil || node.Data() == nil {
		return [][]patients.Record{}, nil
	}
	pageNodes, err := node.Children()
	if err != nil {
		return nil, err
	}

	pages := make([][]patients.Record, 0, len(pageNodes))
	for _, pageNode := range pageNodes {
		rows, err := pageNode.Children()
		if err != nil {
			return nil, err
		}
		page := make([]patients.Record, 0, len(rows))
		for _, row := range rows {
			rec, err := decodeRecord(row.Data())
			if err != nil {
				return nil, err
			}
			page = append(page, rec)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func decodeRecord(raw interface{}) (patients.Record, error) {
	var rec patients.Record
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return rec, err
	}
	if err := dec.Decode(raw); err != nil {
		return rec, err
	}
	return rec, nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}
