package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Document is the canonical approval document that gets hashed and anchored.
// For income records the approver fields are empty; the encoding keeps their
// slots so the field positions never shift between record kinds.
type Document struct {
	Kind     string
	RecordID string
	Amount   decimal.Decimal
	Category string
	Purpose  string
	DocRef   string

	CreatorID     string
	CreatorName   string
	CreatorRole   string
	CreatorWallet string
	TermStart     time.Time
	TermEnd       time.Time
	CreatedAt     time.Time

	ApproverID     string
	ApproverName   string
	ApproverWallet string
	ApprovedAt     time.Time
}

// encodingVersion is bumped whenever the canonical encoding changes, so
// digests from different encodings can never collide silently. v1 joined
// raw fields with "|"; v2 length-prefixes each field so text cannot shift
// across field boundaries.
const encodingVersion = "v2"

// Digest returns the hex SHA-256 of the document's canonical encoding.
// The encoding is a fixed, explicitly ordered field sequence with each
// field written as "<byte length>:<value>|": amounts at two decimal
// places, timestamps as RFC3339 UTC, zero times as empty strings. The
// length prefix makes the encoding injective, so two distinct documents
// never share a digest even when their fields contain the separators.
func Digest(doc Document) string {
	fields := []string{
		encodingVersion,
		doc.Kind,
		doc.RecordID,
		doc.Amount.StringFixed(2),
		doc.Category,
		doc.Purpose,
		doc.DocRef,
		doc.CreatorID,
		doc.CreatorName,
		doc.CreatorRole,
		doc.CreatorWallet,
		canonicalTime(doc.TermStart),
		canonicalTime(doc.TermEnd),
		canonicalTime(doc.CreatedAt),
		doc.ApproverID,
		doc.ApproverName,
		doc.ApproverWallet,
		canonicalTime(doc.ApprovedAt),
	}

	var enc strings.Builder
	for _, f := range fields {
		enc.WriteString(strconv.Itoa(len(f)))
		enc.WriteByte(':')
		enc.WriteString(f)
		enc.WriteByte('|')
	}

	sum := sha256.Sum256([]byte(enc.String()))
	return hex.EncodeToString(sum[:])
}

func canonicalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
