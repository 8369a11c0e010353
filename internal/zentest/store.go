package zentest

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

const tableRecords = "records"

// Collections that are not exposed as resources but kept in the same table.
const (
	collDefaultStacks = "default_stacks"
	collInviteTokens  = "invite_tokens"
	collTeamMembers   = "team_members"
	collSideEffects   = "side_effects"
	collStepInputs    = "step_inputs"
)

var (
	errRecordNotFound = errors.New("record not found")
	errRecordExists   = errors.New("record exists")
)

// record is one stored entity. Data is never mutated once inserted.
type record struct {
	Collection string
	ID         string
	Seq        uint64
	Data       map[string]interface{}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableRecords: {
				Name: tableRecords,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:   "id",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "Collection"},
								&memdb.StringFieldIndex{Field: "ID"},
							},
						},
					},
					"collection": {
						Name: "collection",
						Indexer: &memdb.StringFieldIndex{
							Field: "Collection",
						},
					},
				},
			},
		},
	}
}

// uniqueKeys lists the fields whose combination must be unique per collection.
var uniqueKeys = map[string][]string{
	"stacks":           {"project", "name"},
	"components":       {"project", "type", "name"},
	"flavors":          {"project", "type", "name"},
	"projects":         {"name"},
	"users":            {"name"},
	"teams":            {"name"},
	"roles":            {"name"},
	"role_assignments": {"role_id", "user_id", "team_id", "project_id"},
	"repositories":     {"project", "name"},
	"pipelines":        {"project", "name"},
	"runs":             {"project", "name"},
	"steps":            {"pipeline_run_id", "name"},
}

type conflictError struct {
	collection string
	keys       []string
	data       map[string]interface{}
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("Unable to register %s '%s': found an existing entry with the same %v",
		e.collection, valueString(e.data["name"]), e.keys)
}

func (e *conflictError) Unwrap() error {
	return errRecordExists
}

type store struct {
	db  *memdb.MemDB
	seq uint64
}

func newStore() *store {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		panic(fmt.Sprintf("zentest: invalid schema: %v", err))
	}

	return &store{db: db}
}

func (s *store) get(collection, id string) (map[string]interface{}, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableRecords, "id", collection, id)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}

	if raw == nil {
		return nil, errRecordNotFound
	}

	return copyData(raw.(*record).Data), nil
}

// list returns the records of a collection accepted by match, in insertion order.
func (s *store) list(collection string, match func(map[string]interface{}) bool) ([]map[string]interface{}, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	records, err := scan(txn, collection)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]interface{}, 0, len(records))

	for _, rec := range records {
		if match == nil || match(rec.Data) {
			items = append(items, copyData(rec.Data))
		}
	}

	return items, nil
}

func scan(txn *memdb.Txn, collection string) ([]*record, error) {
	it, err := txn.Get(tableRecords, "collection", collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}

	var records []*record

	for obj := it.Next(); obj != nil; obj = it.Next() {
		records = append(records, obj.(*record))
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	return records, nil
}

// create stores data under a new id, enforcing the collection's uniqueness keys.
func (s *store) create(collection string, data map[string]interface{}) (map[string]interface{}, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	data = copyData(data)
	data["id"] = uuid.New().String()
	data["created"] = now
	data["updated"] = now

	return s.write(collection, valueString(data["id"]), data, true)
}

// update merges patch into the stored record.
func (s *store) update(collection, id string, patch map[string]interface{}) (map[string]interface{}, error) {
	existing, err := s.get(collection, id)
	if err != nil {
		return nil, err
	}

	for key, value := range patch {
		existing[key] = value
	}

	existing["id"] = id
	existing["updated"] = time.Now().UTC().Format(time.RFC3339Nano)

	return s.write(collection, id, existing, false)
}

// put stores data under a caller-chosen id, replacing any previous record.
func (s *store) put(collection, id string, data map[string]interface{}) error {
	_, err := s.write(collection, id, copyData(data), false)

	return err
}

func (s *store) write(collection, id string, data map[string]interface{}, fresh bool) (map[string]interface{}, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	if keys, ok := uniqueKeys[collection]; ok {
		records, err := scan(txn, collection)
		if err != nil {
			return nil, err
		}

		for _, rec := range records {
			if rec.ID != id && sameKeys(rec.Data, data, keys) {
				return nil, &conflictError{collection: collection, keys: keys, data: data}
			}
		}
	}

	seq := s.nextSeq()

	if !fresh {
		raw, err := txn.First(tableRecords, "id", collection, id)
		if err != nil {
			return nil, fmt.Errorf("reading %s/%s: %w", collection, id, err)
		}

		if raw != nil {
			seq = raw.(*record).Seq
		}
	}

	err := txn.Insert(tableRecords, &record{Collection: collection, ID: id, Seq: seq, Data: data})
	if err != nil {
		return nil, fmt.Errorf("storing %s/%s: %w", collection, id, err)
	}

	txn.Commit()

	return copyData(data), nil
}

func (s *store) nextSeq() uint64 {
	s.seq++

	return s.seq
}

func (s *store) delete(collection, id string) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableRecords, "id", collection, id)
	if err != nil {
		return fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}

	if raw == nil {
		return errRecordNotFound
	}

	err = txn.Delete(tableRecords, raw)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}

	txn.Commit()

	return nil
}

func sameKeys(a, b map[string]interface{}, keys []string) bool {
	for _, key := range keys {
		if valueString(a[key]) != valueString(b[key]) {
			return false
		}
	}

	return true
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		out[key] = value
	}

	return out
}

// valueString renders a decoded JSON value the way it appears in a query string.
func valueString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
