package product

// UpsertAction describes the outcome of an upsert.
type UpsertAction string

// UpsertAction values.
const (
	ActionInserted UpsertAction = "inserted"
	ActionUpdated  UpsertAction = "updated"
	ActionSkipped  UpsertAction = "skipped"
)

// UpsertResult reports what an upsert did. ID is zero when no record exists
// (a skip against an empty store).
type UpsertResult struct {
	action UpsertAction
	reason string
	id     int64
}

// NewUpsertResult creates an UpsertResult.
func NewUpsertResult(action UpsertAction, reason string, id int64) UpsertResult {
	return UpsertResult{action: action, reason: reason, id: id}
}

// Action returns the upsert action taken.
func (r UpsertResult) Action() UpsertAction { return r.action }

// Reason returns the explanation for a skip, empty otherwise.
func (r UpsertResult) Reason() string { return r.reason }

// ID returns the affected record ID, or zero when no record exists.
func (r UpsertResult) ID() int64 { return r.id }

// Match is a similarity-search hit: a record scored against a query.
type Match struct {
	record     Record
	similarity float64
}

// NewMatch creates a Match.
func NewMatch(record Record, similarity float64) Match {
	return Match{record: record, similarity: similarity}
}

// Record returns the matched record.
func (m Match) Record() Record { return m.record }

// Similarity returns the similarity as a percentage in [-100, 100].
func (m Match) Similarity() float64 { return m.similarity }

// Content returns the canonical text of the matched record.
func (m Match) Content() string { return m.record.Content() }
