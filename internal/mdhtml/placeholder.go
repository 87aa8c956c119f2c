package mdhtml

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Tokens are wrapped in private-use runes so no markdown pass can match them.
const (
	placeholderOpen  = "\uE000"
	placeholderClose = "\uE001"
)

// placeholderKind tells restored code blocks apart from protected raw HTML
type placeholderKind int

const (
	kindCode placeholderKind = iota
	kindHTML
)

// placeholder is a region pulled out of the working text before the
// line-oriented passes run
type placeholder struct {
	Kind  placeholderKind
	Index int
	Lang  string // fence tag, may be empty
	Text  string // trimmed fence body or the raw HTML as found
	HTML  string // what the token is replaced with
}

// placeholders stores the protected regions of a single conversion
type placeholders struct {
	nonce string
	items []placeholder
}

func newPlaceholders() *placeholders {
	return &placeholders{
		nonce: strings.ReplaceAll(uuid.New().String(), "-", ""),
	}
}

// token returns the marker for index i: open rune, nonce, index, close rune
func (p *placeholders) token(i int) string {
	return fmt.Sprintf("%s%s:%d%s", placeholderOpen, p.nonce, i, placeholderClose)
}

// add stores ph and returns its token surrounded by blank lines
func (p *placeholders) add(ph placeholder) string {
	ph.Index = len(p.items)
	p.items = append(p.items, ph)
	return "\n\n" + p.token(ph.Index) + "\n\n"
}

// restore puts every stored region back exactly once. Regions are restored
// newest first: a raw HTML region is stored after the fences inside it, so its
// HTML carries their tokens and must be expanded before them.
func (p *placeholders) restore(text string) string {
	for i := len(p.items) - 1; i >= 0; i-- {
		text = strings.Replace(text, p.token(i), p.items[i].HTML, 1)
	}
	return text
}

func (p *placeholders) count(kind placeholderKind) int {
	n := 0
	for _, ph := range p.items {
		if ph.Kind == kind {
			n++
		}
	}
	return n
}
