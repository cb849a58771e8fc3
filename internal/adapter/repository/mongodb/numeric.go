package mongodb

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Older crop documents were written by clients that sent numbers as strings or fractions, so
// numeric fields decode from any numeric BSON type or a numeric string.

// decimal is a float field that tolerates legacy encodings. It is written as a double.
type decimal float64

func (d decimal) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(float64(d))
}

func (d *decimal) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	f, err := numericValue(bson.RawValue{Type: t, Value: data})
	if err != nil {
		return err
	}
	*d = decimal(f)
	return nil
}

// wholeNumber is an integer field that tolerates legacy encodings. Fractions are truncated.
// It is written as an int64.
type wholeNumber int64

func (n wholeNumber) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(int64(n))
}

func (n *wholeNumber) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	f, err := numericValue(bson.RawValue{Type: t, Value: data})
	if err != nil {
		return err
	}
	*n = wholeNumber(math.Trunc(f))
	return nil
}

func numericValue(rv bson.RawValue) (float64, error) {
	switch rv.Type {
	case bsontype.Double:
		f, ok := rv.DoubleOK()
		if ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	case bsontype.Int32:
		if i, ok := rv.Int32OK(); ok {
			return float64(i), nil
		}
	case bsontype.Int64:
		if i, ok := rv.Int64OK(); ok {
			return float64(i), nil
		}
	case bsontype.Decimal128:
		if d, ok := rv.Decimal128OK(); ok {
			return parseNumericString(d.String())
		}
	case bsontype.String:
		if s, ok := rv.StringValueOK(); ok {
			return parseNumericString(s)
		}
	case bsontype.Null, bsontype.Undefined:
		return 0, nil
	}
	return 0, fmt.Errorf("cannot decode %s into a number", rv.Type)
}

func parseNumericString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("cannot decode %q into a number", s)
	}
	return f, nil
}

// quantityEquals matches a stored quantity equal to q, including the string form older
// documents may hold.
func quantityEquals(q float64) bson.M {
	return bson.M{"$in": bson.A{q, strconv.FormatFloat(q, 'f', -1, 64)}}
}
