package tabular

// xml.go handles the markup format. Accounting exports wrap their records in
// arbitrary envelope elements, so instead of binding to a fixed schema the
// document is decoded into a map tree (mxj) and the first array-valued node
// found becomes the row set. Siblings of a node are examined before
// descending into children, so the shallowest repeated element wins. A
// document carrying exactly one record decodes without any array; the
// shallowest childless element is taken as the single record instead.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clbanning/mxj/v2"
)

// attrPrefix is the prefix mxj puts on attribute keys when decoding.
const attrPrefix = "-"

// parseXML decodes an XML payload. Attribute-prefixed keys are retained in
// row data but excluded from the inferred column list.
func parseXML(data []byte) (*Table, error) {
	doc, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, &ParseError{Format: FormatXML, Reason: err.Error()}
	}

	elems := findFirstArray(map[string]interface{}(doc))
	if elems == nil {
		// A document with exactly one record decodes as a plain map, not
		// an array. Treat the shallowest childless element as the record.
		if rec := findSingleRecord(map[string]interface{}(doc)); rec != nil {
			elems = []interface{}{rec}
		}
	}
	if elems == nil {
		return nil, &ParseError{Format: FormatXML, Reason: "no record element found"}
	}

	table := &Table{}
	seen := make(map[string]bool)
	for _, elem := range elems {
		m, ok := elem.(map[string]interface{})
		if !ok {
			continue
		}
		row := make(Row, len(m))
		for _, k := range sortedKeys(m) {
			v, ok := m[k].(string)
			if !ok {
				continue
			}
			row[k] = v
			if !strings.HasPrefix(k, attrPrefix) && k != "#text" && !seen[k] {
				seen[k] = true
				table.Columns = append(table.Columns, k)
			}
		}
		if len(row) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

// findFirstArray walks the decoded tree looking for the first array-valued
// node. All siblings at a level are checked before any child is entered;
// keys are visited in sorted order so the result is deterministic.
func findFirstArray(root map[string]interface{}) []interface{} {
	queue := []map[string]interface{}{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		keys := sortedKeys(node)
		for _, k := range keys {
			if arr, ok := node[k].([]interface{}); ok {
				return arr
			}
		}
		for _, k := range keys {
			if child, ok := node[k].(map[string]interface{}); ok {
				queue = append(queue, child)
			}
		}
	}
	return nil
}

// findSingleRecord walks the decoded tree for the shallowest non-empty map
// node without map-valued children. The root map is the document envelope
// and is never itself a record. Same breadth-first sorted-key order as
// findFirstArray, so the two searches agree on which node wins.
func findSingleRecord(root map[string]interface{}) map[string]interface{} {
	var queue []map[string]interface{}
	for _, k := range sortedKeys(root) {
		if child, ok := root[k].(map[string]interface{}); ok {
			queue = append(queue, child)
		}
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		leaf := true
		for _, k := range sortedKeys(node) {
			if child, ok := node[k].(map[string]interface{}); ok {
				queue = append(queue, child)
				leaf = false
			}
		}
		if leaf && len(node) > 0 {
			return node
		}
	}
	return nil
}

// serializeXML renders rows as <fletes><flete>...</flete>...</fletes>.
// Column names become element tags, so XML mapping definitions must use
// valid tag names.
func serializeXML(columns []string, rows []Row) ([]byte, error) {
	elems := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		elem := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			elem[col] = row[col]
		}
		elems = append(elems, elem)
	}

	doc := mxj.Map(map[string]interface{}{
		"fletes": map[string]interface{}{"flete": elems},
	})
	out, err := doc.XmlIndent("", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode xml: %w", err)
	}
	return out, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
