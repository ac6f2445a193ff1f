package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Encoding
	CommentNotUTF8 Code = 1001

	// Syntax of a single directive or annotation
	CommentSyntax           Code = 2001
	CommentBadRegex         Code = 2002
	CommentBadLevel         Code = 2003
	CommentBadCondition     Code = 2004
	CommentBadArgument      Code = 2005
	CommentUnknownDirective Code = 2006
	CommentRenamedDirective Code = 2007
	CommentBadLineOffset    Code = 2008

	// Structure and duplicates
	CommentDuplicate       Code = 3001
	CommentRevisionScope   Code = 3002
	CommentUnknownRevision Code = 3003
	CommentNoRevisions     Code = 3004

	// Directive-like plain comments
	CommentSuspicious  Code = 4001
	CommentLegacyStyle Code = 4002

	// Loading
	IOLoadFileError Code = 5001
	IOCacheError    Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	CommentNotUTF8:          "Comment is not valid UTF-8",
	CommentSyntax:           "Malformed test comment",
	CommentBadRegex:         "Invalid regular expression",
	CommentBadLevel:         "Unknown diagnostic level",
	CommentBadCondition:     "Invalid ignore/only condition",
	CommentBadArgument:      "Invalid directive argument",
	CommentUnknownDirective: "Unknown directive",
	CommentRenamedDirective: "Renamed directive",
	CommentBadLineOffset:    "Annotation refers to a missing line",
	CommentDuplicate:        "Directive specified twice",
	CommentRevisionScope:    "Revisions declared under a revision",
	CommentUnknownRevision:  "Unknown revision",
	CommentNoRevisions:      "Revision used without declared revisions",
	CommentSuspicious:       "Comment looks like a directive",
	CommentLegacyStyle:      "Comment could be read as a directive",
	IOLoadFileError:         "Failed to load file",
	IOCacheError:            "Cache failure",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ENC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("REV%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
