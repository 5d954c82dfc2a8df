package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleDocument() Document {
	return Document{
		Kind:           "allocation",
		RecordID:       "rec-001",
		Amount:         decimal.NewFromInt(40000),
		Category:       "Education",
		Purpose:        "School supplies for SY 2026",
		DocRef:         "doc-123",
		CreatorID:      "u-treasurer",
		CreatorName:    "Maria Santos",
		CreatorRole:    "treasurer",
		CreatorWallet:  "0xT",
		TermStart:      time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		TermEnd:        time.Date(2028, 7, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:      time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		ApproverID:     "u-chairman",
		ApproverName:   "Jose Cruz",
		ApproverWallet: "0xC",
		ApprovedAt:     time.Date(2026, 2, 4, 9, 30, 0, 0, time.UTC),
	}
}

func TestDigest_Deterministic(t *testing.T) {
	a := Digest(sampleDocument())
	b := Digest(sampleDocument())
	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "hex-encoded SHA-256")
}

func TestDigest_SensitiveToEveryField(t *testing.T) {
	base := Digest(sampleDocument())

	mutations := map[string]func(*Document){
		"amount":      func(d *Document) { d.Amount = decimal.NewFromInt(40001) },
		"category":    func(d *Document) { d.Category = "Health" },
		"purpose":     func(d *Document) { d.Purpose = "Different purpose" },
		"creator":     func(d *Document) { d.CreatorID = "someone-else" },
		"approver":    func(d *Document) { d.ApproverWallet = "0xEvil" },
		"approved at": func(d *Document) { d.ApprovedAt = d.ApprovedAt.Add(time.Second) },
		"term window": func(d *Document) { d.TermEnd = d.TermEnd.AddDate(1, 0, 0) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			doc := sampleDocument()
			mutate(&doc)
			assert.NotEqual(t, base, Digest(doc))
		})
	}
}

func TestDigest_TimezoneIndependent(t *testing.T) {
	manila := time.FixedZone("PHT", 8*3600)

	doc := sampleDocument()
	doc.ApprovedAt = doc.ApprovedAt.In(manila)
	doc.CreatedAt = doc.CreatedAt.In(manila)

	assert.Equal(t, Digest(sampleDocument()), Digest(doc),
		"the canonical encoding normalizes timestamps to UTC")
}

func TestDigest_AmountScaleInsensitive(t *testing.T) {
	doc := sampleDocument()
	doc.Amount = decimal.RequireFromString("40000.00")

	assert.Equal(t, Digest(sampleDocument()), Digest(doc),
		"40000 and 40000.00 are the same logical amount")
}

func TestDigest_FieldBoundariesAreUnambiguous(t *testing.T) {
	// Shifting text across a field boundary must change the digest, even
	// when the concatenated bytes are identical.
	a := sampleDocument()
	a.Purpose = "supplies"
	a.DocRef = "x|doc-123"

	b := sampleDocument()
	b.Purpose = "supplies|x"
	b.DocRef = "doc-123"

	assert.NotEqual(t, Digest(a), Digest(b))
}

func TestDigest_IncomeDocumentOmitsApprover(t *testing.T) {
	doc := sampleDocument()
	doc.ApproverID = ""
	doc.ApproverName = ""
	doc.ApproverWallet = ""
	doc.ApprovedAt = time.Time{}

	assert.NotEqual(t, Digest(sampleDocument()), Digest(doc))
	assert.Equal(t, Digest(doc), Digest(doc))
}
