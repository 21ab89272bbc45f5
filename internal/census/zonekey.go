package census

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrUnmatchedZoneKey reports a zone identifier whose numeric code could
// not be parsed. Records carrying such a key are excluded from joins, not
// treated as failures.
var ErrUnmatchedZoneKey = eris.New("census: unmatched zone key")

// NormalizeZoneKey reconciles the zone-identifier encodings that occur
// across the source data into one canonical join key:
//
//   - a label with the numeric code as the final '-'-delimited token
//     ("Einhver svæði - 0007" -> "7"),
//   - a zero-padded numeric string ("0007" -> "7"),
//   - an already-canonical key ("7" -> "7").
//
// The canonical form is the decimal string without leading zeros, so the
// function is idempotent. Both sides of any join must pass through here;
// raw keys are never compared directly.
func NormalizeZoneKey(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if i := strings.LastIndex(token, "-"); i >= 0 {
		token = strings.TrimSpace(token[i+1:])
	}
	if token == "" {
		return "", eris.Wrapf(ErrUnmatchedZoneKey, "empty zone code in %q", raw)
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return "", eris.Wrapf(ErrUnmatchedZoneKey, "non-numeric zone code %q in %q", token, raw)
	}
	return strconv.Itoa(n), nil
}
