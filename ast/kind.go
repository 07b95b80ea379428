// Package ast defines the opaque syntax tree shape that scanners consume: [Node], tagged with a
// [Kind] and bearing literal [Node.Text] on leaves. Producing such a tree (lexing and parsing the
// target language) is the job of an external TreeProvider; this package only defines the shape and
// a minimal concrete implementation ([Leaf], [Tree]) that such a provider, and tests, can build.
package ast

// Kind enumerates the syntactic constructs the scanners recognize, plus the token kinds that
// appear as leaves.
type Kind int

const (
	// KindTerminal is not a real syntax construct: it is the synthetic end-of-sequence node the
	// pattern matcher consumes once after the real input is exhausted.
	KindTerminal Kind = iota

	// Files and top-level structure.
	KindFile
	KindPackageDirective
	KindImportDirective

	// Declarations.
	KindClassDeclaration
	KindObjectDeclaration
	KindInterfaceDeclaration
	KindFunctionDeclaration
	KindPropertyDeclaration
	KindParameterList
	KindParameter
	KindBlock

	// Expressions and statements.
	KindIfExpression
	KindBinaryExpression
	KindCallExpression
	KindValueArgumentList
	KindValueArgument
	KindDotQualifiedExpression
	KindSafeDotQualifiedExpression

	// Literals.
	KindStringLiteral
	KindStringTemplateEntry
	KindIdentifier
	KindDotIdentifier

	// Documentation and comments.
	KindKDoc
	KindLineComment
	KindBlockComment

	// Leaf tokens (punctuation and keywords carried as leaves with fixed text).
	KindKeyword
	KindPunctuation
	KindWhitespace
	KindNewline
)

var kindNames = map[Kind]string{
	KindTerminal:                    "Terminal",
	KindFile:                        "File",
	KindPackageDirective:            "PackageDirective",
	KindImportDirective:             "ImportDirective",
	KindClassDeclaration:            "ClassDeclaration",
	KindObjectDeclaration:           "ObjectDeclaration",
	KindInterfaceDeclaration:        "InterfaceDeclaration",
	KindFunctionDeclaration:         "FunctionDeclaration",
	KindPropertyDeclaration:         "PropertyDeclaration",
	KindParameterList:               "ParameterList",
	KindParameter:                   "Parameter",
	KindBlock:                       "Block",
	KindIfExpression:                "IfExpression",
	KindBinaryExpression:            "BinaryExpression",
	KindCallExpression:              "CallExpression",
	KindValueArgumentList:           "ValueArgumentList",
	KindValueArgument:               "ValueArgument",
	KindDotQualifiedExpression:      "DotQualifiedExpression",
	KindSafeDotQualifiedExpression:  "SafeDotQualifiedExpression",
	KindStringLiteral:               "StringLiteral",
	KindStringTemplateEntry:         "StringTemplateEntry",
	KindIdentifier:                  "Identifier",
	KindDotIdentifier:               "DotIdentifier",
	KindKDoc:                        "KDoc",
	KindLineComment:                 "LineComment",
	KindBlockComment:                "BlockComment",
	KindKeyword:                     "Keyword",
	KindPunctuation:                 "Punctuation",
	KindWhitespace:                  "Whitespace",
	KindNewline:                     "Newline",
}

// String returns the name of the node kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}
