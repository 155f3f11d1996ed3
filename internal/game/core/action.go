package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionType represents the type of action
type ActionType int

const (
	ActionDeploy ActionType = iota
	// ActionSlide is reserved in the encoding space. The engine never emits or
	// accepts it.
	ActionSlide
)

func (t ActionType) String() string {
	switch t {
	case ActionDeploy:
		return "deploy"
	case ActionSlide:
		return "slide"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Wire tags.
const (
	DeployTag = 'D'
	SlideTag  = 'S'
)

// Action is a closed sum type: Deploy and Slide are its only variants.
type Action interface {
	Type() ActionType
	String() string
	isAction()
}

// Deploy places a new piece on a free cell.
type Deploy struct {
	Cell int
}

func (Deploy) Type() ActionType { return ActionDeploy }
func (Deploy) isAction()        {}

func (d Deploy) String() string {
	return string(DeployTag) + strconv.Itoa(d.Cell)
}

// Slide moves an owned piece to an adjacent cell. Reserved.
type Slide struct {
	From, To int
}

func (Slide) Type() ActionType { return ActionSlide }
func (Slide) isAction()        {}

func (s Slide) String() string {
	return string(SlideTag) + strconv.Itoa(s.From) + "-" + strconv.Itoa(s.To)
}

// ParseAction decodes the wire form: "D<index>" for deploys and
// "S<from>-<to>" for the reserved slide tag. Parsing does not check the index
// against any board.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAction, s)
	}

	body := s[1:]
	switch s[0] {
	case DeployTag:
		cell, err := parseIndex(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedAction, s, err)
		}
		return Deploy{Cell: cell}, nil
	case SlideTag:
		fromStr, toStr, ok := strings.Cut(body, "-")
		if !ok {
			return nil, fmt.Errorf("%w: %q: slide needs from-to", ErrMalformedAction, s)
		}
		from, err := parseIndex(fromStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedAction, s, err)
		}
		to, err := parseIndex(toStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedAction, s, err)
		}
		return Slide{From: from, To: to}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %q", ErrMalformedAction, s[0])
	}
}

// MustParseAction is ParseAction for literals; it panics on error.
func MustParseAction(s string) Action {
	a, err := ParseAction(s)
	if err != nil {
		panic(err)
	}
	return a
}

func parseIndex(s string) (int, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return strconv.Atoi(s)
}
