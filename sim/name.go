package sim

import (
	"strconv"
	"strings"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// NameToken is one dot-separated element of a hierarchical name, such as
// "In[2]".
type NameToken struct {
	ElemName string
	Index    []int
}

// ParseName splits a hierarchical name into its tokens.
func ParseName(name string) []NameToken {
	parts := strings.Split(name, ".")
	tokens := make([]NameToken, len(parts))

	for i, part := range parts {
		tokens[i] = parseNameToken(part)
	}

	return tokens
}

func parseNameToken(token string) NameToken {
	open := strings.IndexByte(token, '[')
	if open < 0 {
		if strings.ContainsRune(token, ']') {
			panic("name bracket must match")
		}

		return NameToken{ElemName: token}
	}

	t := NameToken{ElemName: token[:open]}

	rest := token[open:]
	for rest != "" {
		if rest[0] != '[' {
			panic("name bracket must match")
		}

		end := strings.IndexByte(rest, ']')
		if end < 0 {
			panic("name bracket must match")
		}

		index, err := strconv.Atoi(rest[1:end])
		if err != nil {
			panic("name index must be integer")
		}

		t.Index = append(t.Index, index)
		rest = rest[end+1:]
	}

	return t
}

// NameMustBeValid panics if the name does not follow the naming convention.
//  1. Names are hierarchical, separated by dots ("Merge.In[0]").
//  2. Individual elements must not be empty.
//  3. Elements are capitalized CamelCase without "_", "-" or quotes.
//  4. Elements in a series use square-bracket indices.
func NameMustBeValid(name string) {
	defer func() {
		if r := recover(); r != nil {
			panic("name " + name + " is not valid: " + r.(string))
		}
	}()

	for _, token := range ParseName(name) {
		tokenMustBeValid(token)
	}
}

func tokenMustBeValid(token NameToken) {
	if token.ElemName == "" {
		panic("name element must not be empty")
	}

	if strings.ContainsAny(token.ElemName, "_-\"'") {
		panic("name element must not contain _, -, or quotes")
	}

	if token.ElemName[0] < 'A' || token.ElemName[0] > 'Z' {
		panic("name element must start with a capital letter")
	}
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name from a parent name, an element name and an
// index.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
