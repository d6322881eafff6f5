package omni

import (
	"encoding/json"
	"strings"
)

// ResultMagicPrefix starts every inline encoded result. It is how the
// four 0xFF continuation bytes that open an Arrow IPC stream render in
// base64.
const ResultMagicPrefix = "/////"

type runFragment struct {
	Result          string   `json:"result"`
	RemainingJobIDs []string `json:"remaining_job_ids"`
}

type classification struct {
	encodedResult string
	resultFound   bool
	jobIDs        []string
}

// classifyFragments walks the fragments in order. The first fragment
// carrying a magic-prefixed result settles the outcome and later
// fragments are not even parsed; otherwise job ids accumulate across
// fragments in arrival order. Fragments with neither field are skipped.
func classifyFragments(fragments []string) (classification, error) {
	var out classification
	for _, fragment := range fragments {
		var parsed runFragment
		if err := json.Unmarshal([]byte(fragment), &parsed); err != nil {
			return classification{}, &MalformedResponseError{Reason: "fragment is not valid JSON", Err: err}
		}
		if strings.HasPrefix(parsed.Result, ResultMagicPrefix) {
			out.encodedResult = parsed.Result
			out.resultFound = true
			return out, nil
		}
		out.jobIDs = append(out.jobIDs, parsed.RemainingJobIDs...)
	}
	return out, nil
}
