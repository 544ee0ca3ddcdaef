package extract

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/lang"
)

// Liquid templates have no parser; extraction runs by pattern over the raw
// text and produces the same node and edge shape as the CST walkers.
var (
	liquidRenderRe  = regexp.MustCompile(`\{\%-?\s*(render|include)\s+['"]([^'"]+)['"]`)
	liquidSectionRe = regexp.MustCompile(`\{\%-?\s*section\s+['"]([^'"]+)['"]`)
	liquidSchemaRe  = regexp.MustCompile(`(?s)\{\%-?\s*schema\s*-?\%\}(.*?)\{\%-?\s*endschema`)
	liquidAssignRe  = regexp.MustCompile(`\{\%-?\s*assign\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// extractLiquid emits a file node for the template plus a component node per
// render/include/section tag, a constant for the schema block, and a
// variable per assign. Malformed constructs are skipped without error.
func extractLiquid(filePath string, source []byte, now int64) core.ExtractionResult {
	text := string(source)
	lines := strings.Count(text, "\n") + 1

	fileID := core.FileScopeID(filePath)
	res := core.ExtractionResult{
		Nodes: []core.Node{{
			ID:            fileID,
			Kind:          core.KindFile,
			Name:          filepath.Base(filePath),
			QualifiedName: core.QualifiedName(filePath, nil, filepath.Base(filePath)),
			FilePath:      filePath,
			Language:      string(lang.Liquid),
			StartLine:     1,
			EndLine:       lines,
			UpdatedAt:     now,
		}},
	}

	contain := func(n core.Node) {
		res.Nodes = append(res.Nodes, n)
		res.Edges = append(res.Edges, core.Edge{SourceID: fileID, TargetID: n.ID, Kind: core.EdgeContains})
	}

	emitComponent := func(name, target string, offset int) {
		line, col := lineColAt(text, offset)
		id := core.NodeID(filePath, core.KindComponent, name, line)
		contain(core.Node{
			ID:            id,
			Kind:          core.KindComponent,
			Name:          name,
			QualifiedName: core.QualifiedName(filePath, nil, name),
			FilePath:      filePath,
			Language:      string(lang.Liquid),
			StartLine:     line,
			EndLine:       line,
			StartColumn:   col,
			UpdatedAt:     now,
		})
		res.UnresolvedRefs = append(res.UnresolvedRefs, core.UnresolvedReference{
			FromNodeID: id,
			Name:       target,
			RawText:    target,
			Kind:       core.EdgeReferences,
			Line:       line,
			Column:     col,
		})
	}

	for _, m := range liquidRenderRe.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[4]:m[5]]
		emitComponent(name, "snippets/"+name+".liquid", m[0])
	}
	for _, m := range liquidSectionRe.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		emitComponent(name, "sections/"+name+".liquid", m[0])
	}

	for _, m := range liquidSchemaRe.FindAllStringSubmatchIndex(text, -1) {
		body := strings.TrimSpace(text[m[2]:m[3]])
		line, col := lineColAt(text, m[0])
		name := "schema"
		var parsed struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(body), &parsed); err == nil && parsed.Name != "" {
			name = parsed.Name
		}
		doc := body
		if len(doc) > 200 {
			doc = doc[:200]
		}
		contain(core.Node{
			ID:            core.NodeID(filePath, core.KindConstant, name, line),
			Kind:          core.KindConstant,
			Name:          name,
			QualifiedName: core.QualifiedName(filePath, nil, name),
			FilePath:      filePath,
			Language:      string(lang.Liquid),
			StartLine:     line,
			EndLine:       line + strings.Count(text[m[0]:m[1]], "\n"),
			StartColumn:   col,
			Docstring:     doc,
			UpdatedAt:     now,
		})
	}

	for _, m := range liquidAssignRe.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		line, col := lineColAt(text, m[0])
		contain(core.Node{
			ID:            core.NodeID(filePath, core.KindVariable, name, line),
			Kind:          core.KindVariable,
			Name:          name,
			QualifiedName: core.QualifiedName(filePath, nil, name),
			FilePath:      filePath,
			Language:      string(lang.Liquid),
			StartLine:     line,
			EndLine:       line,
			StartColumn:   col,
			UpdatedAt:     now,
		})
	}

	return res
}

// lineColAt converts a byte offset into a 1-based line and 0-based column.
func lineColAt(text string, offset int) (line, col int) {
	line = 1 + strings.Count(text[:offset], "\n")
	if idx := strings.LastIndexByte(text[:offset], '\n'); idx >= 0 {
		col = offset - idx - 1
	} else {
		col = offset
	}
	return line, col
}
