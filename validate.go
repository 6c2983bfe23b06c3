package sbmigrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// SyntaxValidator gates transformed output by round-tripping it through
// the Dart Sass CLI. When the compiler is missing or times out it falls
// back to a token-level balance check; the compiler verdict is
// authoritative whenever it is available.
type SyntaxValidator struct {
	Binary  string
	Args    []string
	Timeout time.Duration

	log *zap.Logger
}

const defaultValidateTimeout = 10 * time.Second

func NewSyntaxValidator(log *zap.Logger) *SyntaxValidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &SyntaxValidator{
		Binary:  "sass",
		Args:    []string{"--stdin", "--no-source-map", "--style=compressed"},
		Timeout: defaultValidateTimeout,
		log:     log.Named("validate"),
	}
}

// Validate reports whether content compiles. The message is empty when
// valid. Empty content is trivially valid.
func (v *SyntaxValidator) Validate(ctx context.Context, content string) (bool, string) {
	if strings.TrimSpace(content) == "" {
		return true, ""
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if v.Binary != "" {
		valid, msg, err := v.compile(ctx, content)
		if err == nil {
			return valid, msg
		}
		v.log.Debug("sass compiler unavailable, falling back to token balance check",
			zap.Error(err))
	}

	return v.balanceCheck(content)
}

// compile feeds content to the external compiler on stdin. A non-nil
// error means the compiler could not deliver a verdict (missing binary,
// timeout), not that the content is invalid.
func (v *SyntaxValidator) compile(ctx context.Context, content string) (bool, string, error) {
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = defaultValidateTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, v.Binary, v.Args...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return true, "", nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && cctx.Err() == nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = exitErr.String()
		}
		if len(msg) > 500 {
			msg = msg[:500]
		}
		return false, msg, nil
	}
	return false, "", err
}

// balanceCheck walks CSS tokens counting brace/paren/bracket nesting.
// It accepts anything balanced, so it can miss errors the compiler
// would catch, but it never rejects content the compiler accepts.
func (v *SyntaxValidator) balanceCheck(content string) (bool, string) {
	content = stripComments(content)
	lexer := css.NewLexer(parse.NewInputString(content))

	var braces, parens, brackets int
	offset := 0

	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}

		switch tt {
		case css.LeftBraceToken:
			braces++
		case css.RightBraceToken:
			braces--
			if braces < 0 {
				return false, fmt.Sprintf("unmatched closing brace at offset %d", offset)
			}
		case css.LeftParenthesisToken, css.FunctionToken:
			parens++
		case css.RightParenthesisToken:
			parens--
			if parens < 0 {
				return false, fmt.Sprintf("unmatched closing paren at offset %d", offset)
			}
		case css.LeftBracketToken:
			brackets++
		case css.RightBracketToken:
			brackets--
			if brackets < 0 {
				return false, fmt.Sprintf("unmatched closing bracket at offset %d", offset)
			}
		case css.BadStringToken:
			return false, fmt.Sprintf("unterminated string at offset %d", offset)
		}

		offset += len(data)
	}

	switch {
	case braces != 0:
		return false, fmt.Sprintf("%d unclosed brace(s)", braces)
	case parens != 0:
		return false, fmt.Sprintf("%d unclosed paren(s)", parens)
	case brackets != 0:
		return false, fmt.Sprintf("%d unclosed bracket(s)", brackets)
	}
	return true, ""
}
