// Package datarecording stores simulation records in SQLite tables. Each table
// is described by a flat struct; one row is written per struct value.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/structs"
	"github.com/pkg/errors"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data.
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all tables, sorted.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()
}

const defaultBatchSize = 100000

// New creates a DataRecorder that writes to path.sqlite3. An empty path picks
// a unique file name.
func New(path string) DataRecorder {
	w := newWriter()
	w.dbName = path
	w.open()

	atexit.Register(func() { w.Flush() })

	return w
}

// NewWithDB creates a DataRecorder on an already opened database.
func NewWithDB(db *sql.DB) DataRecorder {
	w := newWriter()
	w.DB = db

	atexit.Register(func() { w.Flush() })

	return w
}

func newWriter() *sqliteWriter {
	return &sqliteWriter{
		batchSize: defaultBatchSize,
		tables:    make(map[string]*table),
	}
}

type table struct {
	structType reflect.Type
	entries    []any
}

type sqliteWriter struct {
	*sql.DB

	lock       sync.Mutex
	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

func (w *sqliteWriter) open() {
	if w.dbName == "" {
		w.dbName = "elastic_data_recording_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(errors.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(errors.Wrap(err, "open recording database"))
	}

	w.DB = db
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		return errors.Errorf("entry of type %T is not a struct", entry)
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !isAllowedKind(field.Type.Kind()) {
			return errors.Errorf("field %s has unsupported kind %s",
				field.Name, field.Type.Kind())
		}
	}

	return nil
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		panic(errors.Wrapf(err, "create table %s", tableName))
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if _, found := w.tables[tableName]; found {
		panic(errors.Errorf("table %s already exists", tableName))
	}

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")
	w.mustExecute(`CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`)

	w.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	w.lock.Lock()

	t, exists := w.tables[tableName]
	if !exists {
		w.lock.Unlock()
		panic(errors.Errorf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		w.lock.Unlock()
		panic(errors.Errorf("table %s stores %s, got %T",
			tableName, t.structType, entry))
	}

	t.entries = append(t.entries, entry)
	w.entryCount++
	full := w.entryCount >= w.batchSize

	w.lock.Unlock()

	if full {
		w.Flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	w.lock.Lock()
	defer w.lock.Unlock()

	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (w *sqliteWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.entryCount == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for name, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		w.writeEntries(name, t)
		t.entries = nil
	}

	w.entryCount = 0
}

func (w *sqliteWriter) writeEntries(name string, t *table) {
	placeholders := structs.Names(t.entries[0])
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := w.Prepare("INSERT INTO " + name +
		" VALUES (" + strings.Join(placeholders, ", ") + ")")
	if err != nil {
		panic(errors.Wrapf(err, "prepare insert into %s", name))
	}
	defer stmt.Close()

	for _, entry := range t.entries {
		values := reflect.ValueOf(entry)
		args := make([]any, 0, values.NumField())

		for i := 0; i < values.NumField(); i++ {
			args = append(args, values.Field(i).Interface())
		}

		_, err := stmt.Exec(args...)
		if err != nil {
			panic(errors.Wrapf(err, "insert into %s", name))
		}
	}
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		panic(errors.Wrapf(err, "failed to execute %q", query))
	}

	return res
}
