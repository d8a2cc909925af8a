package transport

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"tabula/internal/table"
)

// Wire layout of a table on the TableTransform service:
//
//	{"columns": ["a", "b"], "rows": [{"a": "x", "b": null}], "options": {...}}
const (
	fieldColumns = "columns"
	fieldRows    = "rows"
	fieldOptions = "options"
)

// EncodeTable packs t and the step options into a Struct. Values structpb
// cannot represent are sent in their CSV text form.
func EncodeTable(t *table.Table, options map[string]any) (*structpb.Struct, error) {
	cols := t.Columns()
	colVals := make([]*structpb.Value, len(cols))
	for i, c := range cols {
		colVals[i] = structpb.NewStringValue(c)
	}

	rowVals := make([]*structpb.Value, 0, t.Len())
	for _, r := range t.Rows() {
		fields := make(map[string]*structpb.Value, len(r))
		for k, v := range r {
			fields[k] = encodeValue(v)
		}
		rowVals = append(rowVals, structpb.NewStructValue(&structpb.Struct{Fields: fields}))
	}

	opts, err := structpb.NewStruct(options)
	if err != nil {
		return nil, errors.Wrap(err, "transport: encode options")
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldColumns: structpb.NewListValue(&structpb.ListValue{Values: colVals}),
		fieldRows:    structpb.NewListValue(&structpb.ListValue{Values: rowVals}),
		fieldOptions: structpb.NewStructValue(opts),
	}}, nil
}

// DecodeTable is the inverse of EncodeTable. Numbers come back as float64.
func DecodeTable(s *structpb.Struct) (*table.Table, map[string]any, error) {
	if s == nil {
		return nil, nil, errors.New("transport: nil table payload")
	}
	var cols []string
	for i, v := range s.GetFields()[fieldColumns].GetListValue().GetValues() {
		c, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, nil, errors.Errorf("transport: column %d is not a string", i)
		}
		cols = append(cols, c.StringValue)
	}

	t := table.New(cols...)
	for i, v := range s.GetFields()[fieldRows].GetListValue().GetValues() {
		rs := v.GetStructValue()
		if rs == nil {
			return nil, nil, errors.Errorf("transport: row %d is not an object", i)
		}
		t.Append(table.Row(rs.AsMap()))
	}
	return t, s.GetFields()[fieldOptions].GetStructValue().AsMap(), nil
}

func encodeValue(v any) *structpb.Value {
	if table.IsNull(v) {
		return structpb.NewNullValue()
	}
	if pv, err := structpb.NewValue(v); err == nil {
		return pv
	}
	return structpb.NewStringValue(table.Format(v))
}
