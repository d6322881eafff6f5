package omni

// SplitObjects slices a run response body into its top-level JSON
// objects by brace depth, left to right. The service concatenates
// objects with no delimiter between them, so this is a lexical scan,
// not a parse; text outside the objects is ignored.
//
// The scan does not track string literals: a brace inside a quoted
// value corrupts the depth count. The payloads at this position are
// base64 blobs, job id lists and flags, none of which can contain
// braces.
func SplitObjects(body string) []string {
	var objects []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 {
				objects = append(objects, body[start:i+1])
			}
		}
	}
	return objects
}
