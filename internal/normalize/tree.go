package normalize

import (
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
)

// DepthKey is set on every flattened record; 0 for top-level comments
const DepthKey = "depth"

type treeFrame struct {
	node  interface{}
	depth int
}

// FlattenReplyTree walks a Reddit-style listing ("kind"/"data" nodes with nested
// "replies" listings) and returns the comment data in pre-order. Traversal uses an
// explicit stack, so arbitrarily deep reply chains cannot exhaust the call stack.
// "more" placeholders and malformed nodes are skipped. A limit <= 0 means no limit.
func FlattenReplyTree(children []interface{}, limit int) []models.RawRecord {
	var out []models.RawRecord

	stack := make([]treeFrame, 0, len(children))
	pushChildren := func(nodes []interface{}, depth int) {
		// reverse so the first child is popped first
		for i := len(nodes) - 1; i >= 0; i-- {
			stack = append(stack, treeFrame{node: nodes[i], depth: depth})
		}
	}
	pushChildren(children, 0)

	for len(stack) > 0 {
		if limit > 0 && len(out) >= limit {
			break
		}

		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := frame.node.(map[string]interface{})
		if !ok || node["kind"] != "t1" {
			continue
		}
		data, ok := node["data"].(map[string]interface{})
		if !ok {
			continue
		}

		rec := models.RawRecord{DepthKey: frame.depth}
		for _, key := range []string{"author", "body", "score", "created_utc", "id"} {
			if v, ok := data[key]; ok {
				rec[key] = v
			}
		}
		out = append(out, rec)

		pushChildren(replyChildren(data["replies"]), frame.depth+1)
	}

	return out
}

// replyChildren extracts replies.data.children; Reddit sends "" when there are none
func replyChildren(replies interface{}) []interface{} {
	listing, ok := replies.(map[string]interface{})
	if !ok {
		return nil
	}
	data, ok := listing["data"].(map[string]interface{})
	if !ok {
		return nil
	}
	children, _ := data["children"].([]interface{})
	return children
}

func depthOf(rec models.RawRecord) int {
	switch d := rec[DepthKey].(type) {
	case int:
		return d
	case float64:
		return int(d)
	default:
		return 0
	}
}
