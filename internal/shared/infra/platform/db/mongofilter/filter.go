package mongofilter

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
	"github.com/davicafu/hexaquery/internal/shared/query"
)

var ErrUnsupportedOperator = errors.New("unsupported operator for mongo filter")

// Translator convierte un query.Scope en filtros y opciones de MongoDB.
// Fields renombra campos del recurso a claves del documento (id -> _id).
type Translator struct {
	Types  map[string]query.ColumnType
	Fields map[string]string
}

func New(r query.Resource, fields map[string]string) Translator {
	return Translator{Types: query.ColumnTypes(r), Fields: fields}
}

// none no coincide con ningún documento.
var none = bson.D{{Key: "_id", Value: bson.M{"$exists": false}}}

// Filter traduce las condiciones del scope. Sin condiciones devuelve bson.D{}.
func (t Translator) Filter(scope query.Scope) (bson.D, error) {
	if scope.Empty() {
		return none, nil
	}
	doc, err := t.criteria(scope.Criteria())
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return bson.D{}, nil
	}
	return doc, nil
}

// Sort traduce la ordenación a bson.D (1 asc, -1 desc).
func (t Translator) Sort(o query.Ordering) bson.D {
	sort := bson.D{}
	for _, s := range o {
		dir := 1
		if s.Direction == query.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: t.key(s.Field), Value: dir})
	}
	return sort
}

// FindOptions aplica ordenación y paginación.
func (t Translator) FindOptions(scope query.Scope, page query.Page) *options.FindOptions {
	page = page.Normalize()
	opts := options.Find().SetSkip(int64(page.Offset)).SetLimit(int64(page.Limit))
	if sort := t.Sort(scope.Order()); len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}

func (t Translator) key(field string) string {
	if k, ok := t.Fields[field]; ok {
		return k
	}
	return field
}

func (t Translator) value(field string, v interface{}) interface{} {
	if typ, ok := t.Types[field]; ok {
		return query.Coerce(typ, v)
	}
	return v
}

// ---------------- Criterios ----------------

// criteria devuelve nil cuando el árbol no aporta condiciones.
func (t Translator) criteria(c sharedDomain.Criteria) (bson.D, error) {
	if c == nil {
		return nil, nil
	}
	comp, ok := c.(sharedDomain.CompositeCriteria)
	if !ok {
		var docs []bson.D
		for _, cond := range c.ToConditions() {
			doc, err := t.criterion(cond)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
		return combine("$and", docs), nil
	}

	var docs []bson.D
	for _, child := range comp.Criterias {
		doc, err := t.criteria(child)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, nil
	}

	switch comp.Operator {
	case sharedDomain.OpNot:
		return bson.D{{Key: "$nor", Value: bson.A{combine("$and", docs)}}}, nil
	case sharedDomain.OpOr:
		return combine("$or", docs), nil
	default:
		return combine("$and", docs), nil
	}
}

func combine(op string, docs []bson.D) bson.D {
	switch len(docs) {
	case 0:
		return nil
	case 1:
		return docs[0]
	}
	arr := make(bson.A, len(docs))
	for i, d := range docs {
		arr[i] = d
	}
	return bson.D{{Key: op, Value: arr}}
}

func (t Translator) criterion(c sharedDomain.Criterion) (bson.D, error) {
	key := t.key(c.Field)

	var cond interface{}
	switch c.Op {
	case sharedDomain.OpEq:
		cond = bson.M{"$eq": t.value(c.Field, c.Value)}
	case sharedDomain.OpNe:
		cond = bson.M{"$ne": t.value(c.Field, c.Value)}
	case sharedDomain.OpGt:
		cond = bson.M{"$gt": t.value(c.Field, c.Value)}
	case sharedDomain.OpGte:
		cond = bson.M{"$gte": t.value(c.Field, c.Value)}
	case sharedDomain.OpLt:
		cond = bson.M{"$lt": t.value(c.Field, c.Value)}
	case sharedDomain.OpLte:
		cond = bson.M{"$lte": t.value(c.Field, c.Value)}
	case sharedDomain.OpIn:
		values, _ := c.Value.([]interface{})
		arr := make(bson.A, len(values))
		for i, v := range values {
			arr[i] = t.value(c.Field, v)
		}
		cond = bson.M{"$in": arr}
	case sharedDomain.OpBetween:
		b, ok := c.Value.(sharedDomain.Bounds)
		if !ok {
			return nil, fmt.Errorf("%w: BETWEEN without bounds on %s", ErrUnsupportedOperator, c.Field)
		}
		cond = bson.M{"$gte": t.value(c.Field, b.From), "$lte": t.value(c.Field, b.To)}
	case sharedDomain.OpLike, sharedDomain.OpILike:
		pattern, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs a string pattern", ErrUnsupportedOperator, c.Op)
		}
		m := bson.M{"$regex": sharedDomain.LikeToRegex(pattern)}
		if c.Op == sharedDomain.OpILike {
			m["$options"] = "i"
		}
		cond = m
	case sharedDomain.OpIsNull:
		cond = nil
	case sharedDomain.OpNotNull:
		cond = bson.M{"$ne": nil}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, c.Op)
	}
	return bson.D{{Key: key, Value: cond}}, nil
}
