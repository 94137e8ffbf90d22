// ABOUTME: Static record schemas and the introspector that maps them to SQL columns
// ABOUTME: Fields declare a union of kinds; exactly one non-null member is supported
package table

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is a primitive column type.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	Text
	Blob
)

var kindNames = map[Kind]string{
	Null:  "null",
	Bool:  "bool",
	Int:   "int",
	Float: "float",
	Text:  "text",
	Blob:  "blob",
}

var sqlTypes = map[Kind]string{
	Bool:  "BOOLEAN",
	Blob:  "BLOB",
	Float: "REAL",
	Int:   "INTEGER",
	Text:  "TEXT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is the declared type of a field: a union of kinds.
type Type struct {
	members []Kind
}

// Of declares a type as the union of kinds.
func Of(kinds ...Kind) Type {
	return Type{members: append([]Kind(nil), kinds...)}
}

// Optional declares a nullable type with base kind k.
func Optional(k Kind) Type {
	return Of(k, Null)
}

func (t Type) String() string {
	names := make([]string, 0, len(t.members))
	for _, k := range t.members {
		names = append(names, k.String())
	}
	return strings.Join(names, " | ")
}

// Field is one named, typed member of a record.
type Field struct {
	Name string
	Type Type
}

// Column declares a NOT NULL field.
func Column(name string, k Kind) Field {
	return Field{Name: name, Type: Of(k)}
}

// NullableColumn declares a field that may hold NULL.
func NullableColumn(name string, k Kind) Field {
	return Field{Name: name, Type: Optional(k)}
}

// Schema is an ordered record declaration. Field order is column order.
type Schema []Field

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Descriptor is the column derived from a Field.
type Descriptor struct {
	Name     string
	Kind     Kind
	SQLType  string
	Nullable bool
}

// Definition returns the column definition used in CREATE TABLE.
func (d Descriptor) Definition() string {
	return d.Name + " " + d.SQLType
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Describe derives column descriptors for every field of the schema.
func Describe(s Schema) ([]Descriptor, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: record has no fields", ErrSchema)
	}

	seen := make(map[string]bool, len(s))
	descs := make([]Descriptor, 0, len(s))
	for _, f := range s {
		if !identifier.MatchString(f.Name) {
			return nil, fmt.Errorf("%w: %q is not a valid column name", ErrSchema, f.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrSchema, f.Name)
		}
		seen[f.Name] = true

		d, err := describeField(f)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func describeField(f Field) (Descriptor, error) {
	var (
		base     []Kind
		nullable bool
	)
	for _, k := range f.Type.members {
		if k == Null {
			nullable = true
			continue
		}
		if _, ok := sqlTypes[k]; !ok {
			return Descriptor{}, fmt.Errorf("%w: field %q has unsupported kind %s", ErrSchema, f.Name, k)
		}
		base = append(base, k)
	}

	if len(base) != 1 {
		return Descriptor{}, fmt.Errorf("%w: field %q must have exactly one non-null type, got %q",
			ErrSchema, f.Name, f.Type)
	}

	sqlType := sqlTypes[base[0]]
	if !nullable {
		sqlType += " NOT NULL"
	}
	return Descriptor{
		Name:     f.Name,
		Kind:     base[0],
		SQLType:  sqlType,
		Nullable: nullable,
	}, nil
}
