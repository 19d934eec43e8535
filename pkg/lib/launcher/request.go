package launcher

import (
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

const (
	createSuspended          = 0x00000004
	createUnicodeEnvironment = 0x00000400
	createNoWindow           = 0x08000000
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateRequest(req *lib.LaunchRequest) error {
	if req == nil {
		return lib.Errorf(lib.KindConfig, "validate", "nil launch request")
	}
	if err := validate.Struct(req); err != nil {
		return lib.NewError(lib.KindConfig, "validate", err)
	}

	for name, s := range map[string]string{
		"executable":        req.Executable,
		"arguments":         req.Arguments,
		"working directory": req.WorkingDirectory,
	} {
		if strings.IndexByte(s, 0) >= 0 {
			return lib.Errorf(lib.KindConfig, "validate", "%s contains NUL", name)
		}
	}
	if c := req.Credential; c != nil {
		if strings.IndexByte(c.User, 0) >= 0 || strings.IndexByte(c.Domain, 0) >= 0 || strings.IndexByte(c.Password, 0) >= 0 {
			return lib.Errorf(lib.KindConfig, "validate", "credential contains NUL")
		}
	}

	seen := make(map[string]string, len(req.Env))
	for k, v := range req.Env {
		if k == "" {
			return lib.Errorf(lib.KindConfig, "validate", "empty environment key")
		}
		// A leading '=' is allowed: the OS keeps per-drive directories as "=C:".
		if strings.IndexByte(k[1:], '=') >= 0 {
			return lib.Errorf(lib.KindConfig, "validate", "environment key %q contains '='", k)
		}
		if strings.IndexByte(k, 0) >= 0 || strings.IndexByte(v, 0) >= 0 {
			return lib.Errorf(lib.KindConfig, "validate", "environment entry %q contains NUL", k)
		}
		folded := strings.ToUpper(k)
		if other, ok := seen[folded]; ok {
			return lib.Errorf(lib.KindConfig, "validate", "environment keys %q and %q differ only in case", other, k)
		}
		seen[folded] = k
	}
	return nil
}

func creationFlags(req *lib.LaunchRequest) uint32 {
	flags := uint32(createSuspended)
	if req.NoWindow {
		flags |= createNoWindow
	}
	if req.Env != nil {
		flags |= createUnicodeEnvironment
	}
	return flags
}

// environmentBlock builds a UTF-16 block of "key=value\0" entries sorted
// case-insensitively and terminated by an extra NUL.
func environmentBlock(env map[string]string) []uint16 {
	if len(env) == 0 {
		return []uint16{0, 0}
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
	})

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(env[k])
		b.WriteByte(0)
	}
	b.WriteByte(0)
	return utf16.Encode([]rune(b.String()))
}
