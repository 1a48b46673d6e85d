package segment

import (
	"sort"
	"strings"

	"surveyinsight/domain/survey"
)

// GroupRule says how many underscore tokens form the group prefix of a category
type GroupRule struct {
	Category     survey.Category `json:"category" yaml:"category"`
	PrefixTokens int             `json:"prefix_tokens" yaml:"prefix_tokens"`
}

// DefaultGroupRules returns the checkbox and radio conventions, in evaluation order
func DefaultGroupRules() []GroupRule {
	return []GroupRule{
		{Category: survey.CategoryCheckbox, PrefixTokens: 3},
		{Category: survey.CategoryRadio, PrefixTokens: 2},
	}
}

// Group is a set of sibling columns belonging to one multi-part question
type Group struct {
	Prefix  string   `json:"prefix"`
	Columns []string `json:"columns"`
}

// GroupPrefix joins the first n underscore-delimited tokens of a column name
func GroupPrefix(column string, n int) string {
	tokens := strings.Split(column, "_")
	if n < len(tokens) {
		tokens = tokens[:n]
	}
	return strings.Join(tokens, "_")
}

// ResolveGroups partitions columns by identical prefix. Groups come back
// sorted by prefix, columns keep their input order.
func ResolveGroups(columns []string, tokens int) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, col := range columns {
		prefix := GroupPrefix(col, tokens)
		i, ok := index[prefix]
		if !ok {
			i = len(groups)
			index[prefix] = i
			groups = append(groups, Group{Prefix: prefix})
		}
		groups[i].Columns = append(groups[i].Columns, col)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Prefix < groups[j].Prefix
	})
	return groups
}
