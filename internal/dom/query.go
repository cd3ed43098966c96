package dom

import "strings"

// WalkStatus steers Walk.
type WalkStatus int

const (
	WalkContinue WalkStatus = iota
	WalkSkipChildren
	WalkStop
)

// Walk visits n and its descendants in document order.
func Walk(n Node, fn func(Node) WalkStatus) {
	walk(n, fn)
}

func walk(n Node, fn func(Node) WalkStatus) bool {
	switch fn(n) {
	case WalkStop:
		return false
	case WalkSkipChildren:
		return true
	}
	for _, c := range n.Children() {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// Find returns the first descendant of n (excluding n) that matches, or nil.
func Find(n Node, match func(Node) bool) Node {
	var found Node
	for _, c := range n.Children() {
		Walk(c, func(d Node) WalkStatus {
			if match(d) {
				found = d
				return WalkStop
			}
			return WalkContinue
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n Node) bool {
	for ; n != nil; n = n.Parent() {
		if n == root {
			return true
		}
	}
	return false
}

// Is reports whether n is an element with one of the given tags.
func Is(n Node, tags ...string) bool {
	if n == nil || n.Kind() != ElementNode {
		return false
	}
	for _, t := range tags {
		if n.Tag() == t {
			return true
		}
	}
	return false
}

// AttrOr returns the attribute value, or "" when absent.
func AttrOr(n Node, key string) string {
	v, _ := n.Attr(key)
	return v
}

// Classes splits the class attribute.
func Classes(n Node) []string {
	return strings.Fields(AttrOr(n, "class"))
}

// HasClass reports whether n carries class c.
func HasClass(n Node, c string) bool {
	for _, have := range Classes(n) {
		if have == c {
			return true
		}
	}
	return false
}

// HasAllClasses reports whether n carries every class in cs.
func HasAllClasses(n Node, cs ...string) bool {
	if n == nil || n.Kind() != ElementNode {
		return false
	}
	have := Classes(n)
	for _, c := range cs {
		ok := false
		for _, h := range have {
			if h == c {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// NextElement returns the element sibling following n, or nil.
func NextElement(n Node) Node {
	return siblingElement(n, 1)
}

// PrevElement returns the element sibling preceding n, or nil.
func PrevElement(n Node) Node {
	return siblingElement(n, -1)
}

func siblingElement(n Node, step int) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	kids := p.Children()
	for i, c := range kids {
		if c != n {
			continue
		}
		for j := i + step; j >= 0 && j < len(kids); j += step {
			if kids[j].Kind() == ElementNode {
				return kids[j]
			}
		}
		return nil
	}
	return nil
}

// CollapseSpace folds whitespace runs to single spaces and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
