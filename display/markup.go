package display

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// ParseStage builds a display tree from simple markup, using the
// golang.org/x/net/html tokenizer. Each element becomes a node: a <video>
// tag produces a video leaf, anything else a generic container, and the
// name attribute (falling back to the tag name) names the node. The first
// top-level element is the stage root.
//
//	<stage>
//	  <sprite name="hud"/>
//	  <sprite name="world">
//	    <video name="player"/>
//	  </sprite>
//	</stage>
func ParseStage(r io.Reader) (*Object, error) {
	z := html.NewTokenizer(r)

	var root *Object
	var stack []*Object

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, errors.Wrap(err, "display: parsing stage markup")
			}
			if root == nil {
				return nil, errors.New("display: stage markup has no elements")
			}
			if len(stack) != 0 {
				return nil, errors.Errorf("display: unclosed element %q", stack[len(stack)-1].name)
			}
			return root, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			node := nodeForToken(tok)
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.Errorf("display: multiple top-level elements (%q after %q)", node.name, root.name)
				}
				root = node
			} else if err := stack[len(stack)-1].AddChild(node); err != nil {
				return nil, err
			}
			if tok.Type == html.StartTagToken && !voidElement(tok.Data) {
				stack = append(stack, node)
			}

		case html.EndTagToken:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

func nodeForToken(tok html.Token) *Object {
	name := tok.Data
	for _, a := range tok.Attr {
		if a.Key == "name" {
			name = a.Val
		}
	}
	if strings.EqualFold(tok.Data, "video") {
		return NewVideo(name)
	}
	return NewObject(name)
}

// voidElement reports tags the HTML tokenizer never emits an end tag for.
func voidElement(tag string) bool {
	switch tag {
	case "img", "br", "hr", "input", "meta", "link":
		return true
	}
	return false
}
