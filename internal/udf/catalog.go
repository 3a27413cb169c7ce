package udf

import (
	"errors"
	"fmt"

	"github.com/aitch25/lib-mysqludf-str/internal/bounded"
	"github.com/aitch25/lib-mysqludf-str/internal/random"
	"github.com/aitch25/lib-mysqludf-str/internal/transform"
)

// Version is the library version reported by lib_mysqludf_str_info.
const Version = "0.5"

// Info is the fixed result of lib_mysqludf_str_info.
const Info = "lib_mysqludf_str version " + Version

// SQL names of the built-in functions.
const (
	NameInfo       = "lib_mysqludf_str_info"
	NameNumToWords = "str_numtowords"
	NameRot13      = "str_rot13"
	NameShuffle    = "str_shuffle"
	NameSrand      = "str_srand"
	NameTranslate  = "str_translate"
	NameUcFirst    = "str_ucfirst"
	NameUcWords    = "str_ucwords"
	NameXor        = "str_xor"
)

// Catalog returns a fresh set of the built-in functions configured by opts.
func Catalog(opts ...Option) []Function {
	cfg := newSettings(opts)
	def := func(name, summary string, returns Type, bind binder, params ...Param) *scalar {
		return &scalar{name: name, summary: summary, params: params, returns: returns, bind: bind, cfg: cfg}
	}

	volatile := func(fn *scalar) *scalar {
		fn.volatile = true
		return fn
	}

	return []Function{
		def(NameInfo, "library version string", TypeText, bindInfo),
		def(NameNumToWords, "spells an integer in US-English words", TypeText, bindNumToWords,
			Param{Name: "n", Type: TypeInt}),
		def(NameRot13, "ROT13 letter rotation", TypeText, lengthPreserving(transform.Rot13),
			Param{Name: "s", Type: TypeText}),
		volatile(def(NameShuffle, "random permutation of the bytes of s", TypeBlob, bindShuffle,
			Param{Name: "s", Type: TypeText},
			Param{Name: "seed", Type: TypeInt, Optional: true, Nullable: true})),
		volatile(def(NameSrand, "n pseudo-random bytes", TypeBlob, bindSrand,
			Param{Name: "n", Type: TypeInt, Const: true},
			Param{Name: "seed", Type: TypeInt, Optional: true, Nullable: true})),
		def(NameTranslate, "replaces every byte of from with the byte of to at the same position", TypeText, bindTranslate,
			Param{Name: "s", Type: TypeText},
			Param{Name: "from", Type: TypeText, Const: true},
			Param{Name: "to", Type: TypeText, Const: true}),
		def(NameUcFirst, "upper-cases the first byte", TypeText, lengthPreserving(transform.UcFirst),
			Param{Name: "s", Type: TypeText}),
		def(NameUcWords, "upper-cases the first byte of every word", TypeText, lengthPreserving(transform.UcWords),
			Param{Name: "s", Type: TypeText}),
		def(NameXor, "XOR of a and b, the shorter zero-padded", TypeBlob, bindXor,
			Param{Name: "a", Type: TypeBlob},
			Param{Name: "b", Type: TypeBlob}),
	}
}

func bindInfo(*settings, []ArgSpec) (binding, error) {
	return binding{
		bound: SizeBound(len(Info) + 1),
		body: func(_ []Arg, dst []byte) int {
			_, n := bounded.Copy(dst, []byte(Info))
			return n
		},
	}, nil
}

func bindNumToWords(*settings, []ArgSpec) (binding, error) {
	return binding{
		bound: SizeBound(transform.MaxNumToWordsLen + 1),
		body: func(args []Arg, dst []byte) int {
			_, n := transform.NumToWords(dst, args[0].Int)
			return n
		},
	}, nil
}

func lengthPreserving(f func(dst, src []byte) int) binder {
	return func(_ *settings, args []ArgSpec) (binding, error) {
		return binding{
			bound: SizeBound(args[0].ByteLen()),
			body: func(args []Arg, dst []byte) int {
				return f(dst, args[0].Bytes)
			},
		}, nil
	}
}

func bindTranslate(_ *settings, args []ArgSpec) (binding, error) {
	bound := SizeBound(args[0].ByteLen())
	if args[1].IsNullConst() || args[2].IsNullConst() {
		// Every row is NULL.
		return binding{bound: bound, body: func([]Arg, []byte) int { return 0 }}, nil
	}

	from := args[1].Value.AsBytes()
	to := args[2].Value.AsBytes()
	table, err := transform.NewTable(from, to)
	if errors.Is(err, transform.ErrTableLength) {
		return binding{}, newBindError(ErrCodeTableLength, NameTranslate,
			"from and to must have the same length, got %d and %d", len(from), len(to))
	}
	if err != nil {
		return binding{}, err
	}

	return binding{
		bound: bound,
		body: func(args []Arg, dst []byte) int {
			return table.Apply(dst, args[0].Bytes)
		},
	}, nil
}

func bindXor(_ *settings, args []ArgSpec) (binding, error) {
	return binding{
		bound: SizeBound(transform.XorLen(args[0].ByteLen(), args[1].ByteLen())),
		body: func(args []Arg, dst []byte) int {
			return transform.Xor(dst, args[0].Bytes, args[1].Bytes)
		},
	}, nil
}

func bindShuffle(cfg *settings, args []ArgSpec) (binding, error) {
	rng, err := cfg.entropy()
	if err != nil {
		return binding{}, fmt.Errorf("%s: seed random state: %w", NameShuffle, err)
	}

	return binding{
		bound: SizeBound(args[0].ByteLen()),
		body: func(args []Arg, dst []byte) int {
			reseed(rng, args, 1)
			return transform.Shuffle(dst, args[0].Bytes, rng)
		},
	}, nil
}

func bindSrand(cfg *settings, args []ArgSpec) (binding, error) {
	if args[0].IsNullConst() {
		return binding{body: func([]Arg, []byte) int { return 0 }}, nil
	}

	n := args[0].Value.AsInt()
	switch {
	case n < 0:
		return binding{}, newBindError(ErrCodeNegativeCount, NameSrand, "byte count %d is negative", n)
	case n > int64(cfg.maxRandomBytes):
		return binding{}, newBindError(ErrCodeRandomLimit, NameSrand,
			"byte count %d exceeds the limit of %d", n, cfg.maxRandomBytes)
	}

	rng, err := cfg.entropy()
	if err != nil {
		return binding{}, fmt.Errorf("%s: seed random state: %w", NameSrand, err)
	}

	count := int(n)
	return binding{
		bound: SizeBound(count),
		body: func(args []Arg, dst []byte) int {
			reseed(rng, args, 1)
			return transform.RandomBytes(dst, count, rng)
		},
	}, nil
}

// reseed restarts rng from the seed argument at index i when the row
// supplies one.
func reseed(rng *random.State, args []Arg, i int) {
	if i < len(args) && !args[i].IsNull() {
		rng.Seed(uint64(args[i].Int))
	}
}
