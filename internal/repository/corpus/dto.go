package corpus

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/item"
)

// Hash field names shared by both content pools.
const (
	fieldDocID       = "doc_id"
	fieldDocTitle    = "doc_title"
	fieldPage        = "page"
	fieldOrdinal     = "ordinal"
	fieldContent     = "content"
	fieldEmbedding   = "embedding"
	fieldElementType = "element_type"
	fieldLabel       = "label"
	fieldDescription = "description"
	fieldLatex       = "latex"
	fieldTitle       = "title"
	fieldPages       = "pages"
)

const snippetMaxRunes = 240

// Key and index naming. Item keys end in the item id; the document key
// ends in the document slug.
func passageKey(id string) string { return domain.KeyPrefix + "passage:" + id }
func elementKey(id string) string { return domain.KeyPrefix + "element:" + id }
func docKey(slug string) string   { return domain.KeyPrefix + "document:" + slug }

func itemKey(source item.Source, id string) string {
	if source == item.SourceElement {
		return elementKey(id)
	}
	return passageKey(id)
}

// itemIDFromKey strips the pool prefix back off a stored key.
func itemIDFromKey(source item.Source, key string) string {
	return strings.TrimPrefix(key, itemKey(source, ""))
}

func indexName(source item.Source) string {
	if source == item.SourceElement {
		return domain.KeyPrefix + "elements:idx"
	}
	return domain.KeyPrefix + "passages:idx"
}

func passageFields(p *item.Passage, vector []float32) map[string]string {
	return map[string]string{
		fieldDocID:     p.DocumentID(),
		fieldDocTitle:  p.DocumentTitle(),
		fieldPage:      strconv.Itoa(p.Page()),
		fieldOrdinal:   strconv.Itoa(p.Ordinal()),
		fieldContent:   p.Body(),
		fieldEmbedding: vectorToBytes(vector),
	}
}

func elementFields(e *item.Element, vector []float32) map[string]string {
	fields := map[string]string{
		fieldDocID:       e.DocumentID(),
		fieldDocTitle:    e.DocumentTitle(),
		fieldPage:        strconv.Itoa(e.Page()),
		fieldOrdinal:     strconv.Itoa(e.Ordinal()),
		fieldElementType: string(e.Type()),
		fieldLabel:       e.Label(),
		fieldDescription: e.Description(),
		fieldContent:     e.SearchText(),
		fieldEmbedding:   vectorToBytes(vector),
	}
	if e.LaTeX() != "" {
		fields[fieldLatex] = e.LaTeX()
	}
	return fields
}

func elementFromFields(id string, fields map[string]string) (item.Element, error) {
	page := parseIntField(fields, fieldPage)
	ordinal := parseIntField(fields, fieldOrdinal)

	return item.NewElement(
		id,
		fields[fieldDocID],
		fields[fieldDocTitle],
		page,
		ordinal,
		item.ElementType(fields[fieldElementType]),
		fields[fieldLabel],
		fields[fieldDescription],
		fields[fieldLatex],
		fields[fieldContent],
	)
}

func passageFromFields(id string, fields map[string]string) (item.Passage, error) {
	page := parseIntField(fields, fieldPage)
	ordinal := parseIntField(fields, fieldOrdinal)

	return item.NewPassage(
		id,
		fields[fieldDocID],
		fields[fieldDocTitle],
		page,
		ordinal,
		fields[fieldContent],
	)
}

func parseIntField(fields map[string]string, name string) int {
	n, _ := strconv.Atoi(fields[name])
	return n
}

// snippet truncates content on a rune boundary for result display.
func snippet(content string) string {
	if utf8.RuneCountInString(content) <= snippetMaxRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:snippetMaxRunes]) + "…"
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(s string) ([]float32, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(s))
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
