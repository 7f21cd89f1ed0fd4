package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/broady/capir/internal/corpus"
	"github.com/broady/capir/ir"
)

var multilineDoc = []string{"Some Doxygen", "documentation", "that spans", "multiple lines"}

func parseFixture(t *testing.T, name string, opts Options) *ir.Document {
	t.Helper()
	if opts.Prefix == "" {
		opts.Prefix = "libvlc_"
	}
	opts.File = name
	doc, err := Parse(context.Background(), corpus.Header(name), opts)
	require.NoError(t, err)
	return doc
}

func declNames[T ir.Declaration](decls []T) []string {
	var names []string
	for _, d := range decls {
		names = append(names, d.DeclName())
	}
	return names
}

func diagNames(diags []ir.Diagnostic) []string {
	var names []string
	for _, d := range diags {
		names = append(names, d.Name)
	}
	return names
}

func TestParse_Enums(t *testing.T) {
	doc := parseFixture(t, "enums.h", Options{})
	assert.Empty(t, doc.Diagnostics())

	assert.Equal(t, []string{
		"libvlc_enum_no_values_specified",
		"libvlc_enum_all_values_specified",
		"libvlc_enum_values_specified_or_not",
		"libvlc_enum_with_docs",
		"libvlc_enum_with_hex_values",
		"libvlc_enum_with_bit_shifted_values",
		"libvlc_enum_with_deprecated_values",
		"libvlc_enum_with_documented_values",
		"libvlc_enum_no_values_specified_t",
		"libvlc_enum_all_values_specified_t",
		"libvlc_enum_values_specified_or_not_t",
		"libvlc_enum_with_docs_t",
		"libvlc_enum_with_hex_values_t",
		"libvlc_enum_with_bit_shifted_values_t",
		"libvlc_enum_t",
		"libvlc_enum_with_deprecated_values_t",
		"libvlc_enum_with_documented_values_t",
	}, declNames(doc.Enums()))
	assert.Len(t, doc.Declarations(), 17)

	tests := []struct {
		name   string
		values []int64
	}{
		{"libvlc_enum_no_values_specified", []int64{0, 1, 2}},
		{"libvlc_enum_all_values_specified", []int64{2, 4, 6}},
		{"libvlc_enum_values_specified_or_not", []int64{5, 6, 8, 9}},
		{"libvlc_enum_values_specified_or_not_t", []int64{5, 6, 8, 9}},
		{"libvlc_enum_with_hex_values", []int64{1, 15}},
		{"libvlc_enum_with_bit_shifted_values", []int64{0x720000, 0x670000}},
		{"libvlc_enum_with_bit_shifted_values_t", []int64{7471104, 6750208}},
		{"libvlc_enum_with_deprecated_values", []int64{1, 2}},
		{"libvlc_enum_t", []int64{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := doc.Find(tt.name).(*ir.EnumDecl)
			require.True(t, ok, "%s is not an enum", tt.name)
			assert.Equal(t, tt.values, e.Values())
		})
	}
}

func TestParse_EnumDetails(t *testing.T) {
	doc := parseFixture(t, "enums.h", Options{})

	t.Run("typedef name wins over tag", func(t *testing.T) {
		e := doc.Find("libvlc_enum_t").(*ir.EnumDecl)
		assert.Equal(t, "libvlc_enum", e.Tag)
		assert.True(t, e.Typedef)
		assert.Nil(t, doc.Find("libvlc_enum"))
	})

	t.Run("hex literals", func(t *testing.T) {
		e := doc.Find("libvlc_enum_with_hex_values_t").(*ir.EnumDecl)
		assert.Equal(t, "0x1", e.Enumerators[0].Literal)
		assert.Equal(t, "0xf", e.Enumerators[1].Literal)
	})

	t.Run("decimal literals", func(t *testing.T) {
		e := doc.Find("libvlc_enum_values_specified_or_not").(*ir.EnumDecl)
		var lits []string
		for _, en := range e.Enumerators {
			lits = append(lits, en.Literal)
		}
		assert.Equal(t, []string{"5", "6", "8", "9"}, lits)
	})

	t.Run("docs", func(t *testing.T) {
		for _, name := range []string{"libvlc_enum_with_docs", "libvlc_enum_with_docs_t"} {
			assert.Equal(t, multilineDoc, doc.Find(name).Doc().Lines, name)
		}
		assert.True(t, doc.Find("libvlc_enum_no_values_specified").Doc().IsZero())
	})

	t.Run("line comments are not documentation", func(t *testing.T) {
		e := doc.Find("libvlc_enum_with_docs").(*ir.EnumDecl)
		for _, en := range e.Enumerators {
			assert.True(t, en.Documentation.IsZero(), en.Name)
		}
	})

	t.Run("deprecated enumerators", func(t *testing.T) {
		for _, name := range []string{"libvlc_enum_with_deprecated_values", "libvlc_enum_with_deprecated_values_t"} {
			e := doc.Find(name).(*ir.EnumDecl)
			require.Len(t, e.Enumerators, 2)
			for _, en := range e.Enumerators {
				assert.True(t, en.Deprecated, en.Name)
			}
		}
		e := doc.Find("libvlc_enum_all_values_specified").(*ir.EnumDecl)
		assert.False(t, e.Enumerators[0].Deprecated)
	})

	t.Run("documented enumerators", func(t *testing.T) {
		e := doc.Find("libvlc_enum_with_documented_values_t").(*ir.EnumDecl)
		require.Len(t, e.Enumerators, 2)
		assert.Equal(t, []string{"This is a single line comment for BB1."}, e.Enumerators[0].Documentation.Lines)
		assert.Equal(t, []string{"This is a multi line", "comment for BB2."}, e.Enumerators[1].Documentation.Lines)
		assert.True(t, e.Doc().IsZero())
	})
}

func fieldNames(agg ir.Aggregate) []string {
	return agg.FieldNames()
}

func TestParse_Structs(t *testing.T) {
	doc := parseFixture(t, "structs.h", Options{})
	assert.Empty(t, doc.Diagnostics())
	assert.Len(t, doc.Structs(), 27)
	assert.Nil(t, doc.Find("not_from_libvlc_struct"))
	assert.Nil(t, doc.Find("not_from_libvlc_struct_t"))

	t.Run("typedef name wins over tag", func(t *testing.T) {
		s, ok := doc.Find("libvlc_struct_t").(*ir.StructDecl)
		require.True(t, ok)
		assert.Equal(t, "libvlc_struct", s.Tag)
		assert.Nil(t, doc.Find("libvlc_struct"))
	})

	t.Run("defaults", func(t *testing.T) {
		for name, want := range map[string][]string{
			"libvlc_struct_all_values_specified":   {"1", "'b'", "1.1"},
			"libvlc_struct_all_values_specified_t": {"1", "'b'", "1.1"},
			"libvlc_struct_with_docs":              {"2", "'c'", "1.2"},
		} {
			s := doc.Find(name).(*ir.StructDecl)
			var got []string
			for _, f := range s.Aggregate.Fields {
				pf := f.(*ir.PrimitiveField)
				require.NotNil(t, pf.Default, "%s.%s", name, pf.Name)
				got = append(got, *pf.Default)
			}
			assert.Equal(t, want, got, name)
		}
		s := doc.Find("libvlc_struct_no_values_specified").(*ir.StructDecl)
		assert.Nil(t, s.Aggregate.Fields[0].(*ir.PrimitiveField).Default)
	})

	t.Run("field types", func(t *testing.T) {
		s := doc.Find("libvlc_struct_no_values_specified").(*ir.StructDecl)
		var types []string
		for _, f := range s.Aggregate.Fields {
			types = append(types, f.(*ir.PrimitiveField).Type.Render())
		}
		assert.Equal(t, []string{"int", "char", "double"}, types)
	})

	t.Run("constness", func(t *testing.T) {
		s := doc.Find("libvlc_struct_with_const_t").(*ir.StructDecl)
		x := s.Aggregate.Field("x").(*ir.PrimitiveField)
		assert.Equal(t, []bool{true}, x.Type.Consts())

		p := doc.Find("libvlc_struct_pointers").(*ir.StructDecl)
		assert.Equal(t, []bool{true, false}, p.Aggregate.Field("x").(*ir.PrimitiveField).Type.Consts())
		assert.Equal(t, []bool{false, true}, p.Aggregate.Field("y").(*ir.PrimitiveField).Type.Consts())
	})

	t.Run("docs", func(t *testing.T) {
		assert.Equal(t, multilineDoc, doc.Find("libvlc_struct_with_docs_t").Doc().Lines)
		assert.True(t, doc.Find("libvlc_struct_with_const").Doc().IsZero())
	})

	flat := map[string][]string{
		"libvlc_struct_with_anonymous_nested_union":                          {"a", "b", "c", "d"},
		"libvlc_struct_with_anonymous_nested_struct_t":                       {"a", "b", "c", "d"},
		"libvlc_struct_with_nested_anonymous_union_and_struct":               {"a", "b", "c", "d"},
		"libvlc_struct_with_nested_anonymous_union_and_nested_struct_inside": {"a", "b", "c", "d", "e"},
		"libvlc_struct_with_named_nested_union":                              {"a", "u", "d"},
		"libvlc_struct_with_named_nested_struct_t":                           {"a", "s", "d"},
		"libvlc_struct_with_nested_named_union_and_struct":                   {"a", "u", "s", "d"},
		"libvlc_struct_with_nested_named_union_and_nested_struct_inside_t":   {"a", "u", "e"},
	}
	for name, want := range flat {
		t.Run("fields/"+name, func(t *testing.T) {
			s := doc.Find(name).(*ir.StructDecl)
			assert.Equal(t, want, fieldNames(s.Aggregate))
		})
	}

	t.Run("named nesting", func(t *testing.T) {
		s := doc.Find("libvlc_struct_with_nested_named_union_and_nested_struct_inside").(*ir.StructDecl)
		u, ok := s.Aggregate.Field("u").(*ir.NestedAggregate)
		require.True(t, ok)
		assert.Equal(t, ir.AggregateUnion, u.Aggregate.Kind)
		assert.Equal(t, []string{"b", "s1", "s2"}, fieldNames(u.Aggregate))

		s1, ok := u.Aggregate.Field("s1").(*ir.NestedAggregate)
		require.True(t, ok)
		assert.Equal(t, ir.AggregateStruct, s1.Aggregate.Kind)
		assert.Equal(t, []string{"c"}, fieldNames(s1.Aggregate))

		mixed := doc.Find("libvlc_struct_with_nested_named_union_and_struct_t").(*ir.StructDecl)
		assert.Equal(t, ir.FieldNested, mixed.Aggregate.Fields[1].FieldKind())
		assert.Equal(t, ir.FieldNested, mixed.Aggregate.Fields[2].FieldKind())
	})
}

func TestParse_Functions(t *testing.T) {
	doc := parseFixture(t, "funcs.h", Options{})

	assert.Equal(t, []string{
		"libvlc_simple",
		"libvlc_simple_with_void",
		"libvlc_attribute_on_the_previous_line",
		"libvlc_with_docs",
		"libvlc_simple_types",
		"libvlc_pointer_as_return_type",
		"libvlc_pointer_as_return_type_with_qualifier",
		"libvlc_pointers_and_qualifiers_everywhere",
		"libvlc_multiple_pointers",
		"libvlc_multiple_pointers_and_qualifiers",
	}, declNames(doc.Functions()))
	for _, fn := range doc.Functions() {
		assert.True(t, fn.Public, fn.Name)
	}

	assert.Equal(t, []string{
		"libvlc_function_pointer_as_param",
		"libvlc_complex_function_pointer_as_param",
		"libvlc_complex_function_pointer_as_param_with_named_params",
	}, diagNames(doc.Diagnostics()))
	for _, d := range doc.Diagnostics() {
		assert.Equal(t, ir.UnsupportedConstruct, d.Kind)
		assert.True(t, errors.Is(d, ir.ErrUnsupported))
	}

	t.Run("empty parameter lists", func(t *testing.T) {
		for _, name := range []string{"libvlc_simple", "libvlc_simple_with_void"} {
			fn := doc.Find(name).(*ir.FunctionDecl)
			assert.Empty(t, fn.Signature.Params, name)
			assert.True(t, fn.Signature.Return.IsVoid(), name)
		}
	})

	t.Run("docs", func(t *testing.T) {
		assert.Equal(t, multilineDoc, doc.Find("libvlc_with_docs").Doc().Lines)
	})

	t.Run("simple types", func(t *testing.T) {
		fn := doc.Find("libvlc_simple_types").(*ir.FunctionDecl)
		assert.Equal(t, "char", fn.Signature.Return.Render())
		require.Len(t, fn.Signature.Params, 2)
		assert.Equal(t, "a", fn.Signature.Params[0].Name)
		assert.Equal(t, "int", fn.Signature.Params[0].Type.Render())
		assert.Equal(t, "b", fn.Signature.Params[1].Name)
		assert.Equal(t, "float", fn.Signature.Params[1].Type.Render())
	})

	t.Run("qualifier chains", func(t *testing.T) {
		fn := doc.Find("libvlc_multiple_pointers_and_qualifiers").(*ir.FunctionDecl)
		assert.Equal(t, []bool{true, true, false}, fn.Signature.Return.Consts())
		assert.Equal(t, []bool{true, false, true}, fn.Signature.Params[0].Type.Consts())
		assert.Equal(t, []bool{false, true, true, true}, fn.Signature.Params[1].Type.Consts())
		assert.Equal(t, "const char* const*", fn.Signature.Return.Render())

		mp := doc.Find("libvlc_multiple_pointers").(*ir.FunctionDecl)
		assert.Equal(t, 2, mp.Signature.Params[0].Type.Depth())
		assert.Equal(t, 3, mp.Signature.Params[1].Type.Depth())
	})
}

func TestParse_Visibility(t *testing.T) {
	doc := parseFixture(t, "funcs.h", Options{IgnoreVisibility: true})

	fn, ok := doc.Find("libvlc_not_in_public_api").(*ir.FunctionDecl)
	require.True(t, ok)
	assert.False(t, fn.Public)
	assert.Nil(t, doc.Find("not_a_libvlc_function"))

	strict := parseFixture(t, "funcs.h", Options{})
	assert.Nil(t, strict.Find("libvlc_not_in_public_api"))
	assert.True(t, strict.Find("libvlc_simple").(*ir.FunctionDecl).Public)
}

func TestParse_Callbacks(t *testing.T) {
	doc := parseFixture(t, "callbacks.h", Options{})

	assert.Equal(t, []string{
		"libvlc_simple_cb",
		"libvlc_simple_with_void_cb",
		"libvlc_simple_with_void_pointers_cb",
		"libvlc_simple_types_cb",
		"libvlc_with_docs_cb",
		"libvlc_one_pointer_cb",
		"libvlc_one_pointer_and_const_cb",
		"libvlc_multiple_pointers_cb",
		"libvlc_multiple_pointers_with_const_cb",
	}, declNames(doc.Callbacks()))
	assert.Equal(t, []string{
		"libvlc_function_pointer_as_param_cb",
		"libvlc_complex_function_pointer_as_param_cb",
	}, diagNames(doc.Diagnostics()))

	assert.Equal(t, multilineDoc, doc.Find("libvlc_with_docs_cb").Doc().Lines)

	cb := doc.Find("libvlc_multiple_pointers_with_const_cb").(*ir.CallbackDecl)
	sig := cb.Signature
	assert.Equal(t, []bool{true, false, false}, sig.Return.Consts())
	require.Len(t, sig.Params, 3)
	assert.Equal(t, []bool{true, true, false}, sig.Params[0].Type.Consts())
	assert.Equal(t, []bool{false, true, true, true}, sig.Params[1].Type.Consts())
	assert.Equal(t, []bool{false, true, false, true, false}, sig.Params[2].Type.Consts())

	vp := doc.Find("libvlc_simple_with_void_pointers_cb").(*ir.CallbackDecl)
	assert.Equal(t, "void*", vp.Signature.Return.Render())
	assert.Equal(t, "p", vp.Signature.Params[0].Name)
	assert.Equal(t, "typedef void* (*libvlc_simple_with_void_pointers_cb)(void* p);\n", ir.RenderC(vp))
}

func TestParse_Extras(t *testing.T) {
	doc := parseFixture(t, "extras.h", Options{
		PublicMacros:     []string{"LIBVLC_API"},
		DeprecatedMacros: []string{"LIBVLC_DEPRECATED"},
	})

	assert.Equal(t, []string{
		"libvlc_instance_t",
		"libvlc_time_t",
		"libvlc_new",
		"libvlc_release",
		"libvlc_add_intf",
		"libvlc_printf",
		"libvlc_state_t",
		"libvlc_event_t",
		"libvlc_media_stats_t",
		"libvlc_track_t",
		"libvlc_track_s",
		"libvlc_after_error",
	}, declNames(doc.Declarations()))

	diags := doc.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, ir.UnresolvedExpression, diags[0].Kind)
	assert.Equal(t, "libvlc_broken_t", diags[0].Name)
	assert.Equal(t, ir.SyntaxError, diags[1].Kind)
	assert.Equal(t, ir.DuplicateDeclaration, diags[2].Kind)
	assert.Equal(t, "libvlc_release", diags[2].Name)
	assert.Error(t, doc.Err())

	t.Run("opaque typedef", func(t *testing.T) {
		td := doc.Find("libvlc_instance_t").(*ir.TypedefDecl)
		assert.True(t, td.Opaque)
		assert.Equal(t, "struct libvlc_instance_t", td.Target.Render())

		tm := doc.Find("libvlc_time_t").(*ir.TypedefDecl)
		assert.False(t, tm.Opaque)
		assert.Equal(t, ir.TypePrimitive, tm.Target.Kind)
	})

	t.Run("forward typedef", func(t *testing.T) {
		s, ok := doc.Find("libvlc_media_stats_t").(*ir.StructDecl)
		require.True(t, ok)
		assert.True(t, s.Typedef)
		assert.Equal(t, "libvlc_media_stats_t", s.Tag)
		assert.Equal(t, []string{"i_read_bytes", "i_demux_corrupted"}, fieldNames(s.Aggregate))
		assert.Equal(t, []string{"Media statistics."}, s.Documentation.Lines)

		td, ok := doc.Find("libvlc_track_t").(*ir.TypedefDecl)
		require.True(t, ok)
		assert.False(t, td.Opaque)
		assert.Equal(t, "struct libvlc_track_s", td.Target.Render())
		assert.IsType(t, &ir.StructDecl{}, doc.Find("libvlc_track_s"))
	})

	t.Run("marker macros", func(t *testing.T) {
		fn := doc.Find("libvlc_add_intf").(*ir.FunctionDecl)
		assert.True(t, fn.Public)
		assert.True(t, fn.Deprecated)
		assert.False(t, doc.Find("libvlc_new").(*ir.FunctionDecl).Deprecated)
	})

	t.Run("param names from docs", func(t *testing.T) {
		fn := doc.Find("libvlc_release").(*ir.FunctionDecl)
		require.Len(t, fn.Signature.Params, 1)
		assert.Equal(t, "p_instance", fn.Signature.Params[0].Name)
		assert.Equal(t, "libvlc_instance_t*", fn.Signature.Params[0].Type.Render())
	})

	t.Run("variadic", func(t *testing.T) {
		fn := doc.Find("libvlc_printf").(*ir.FunctionDecl)
		assert.True(t, fn.Signature.Variadic)
		assert.Len(t, fn.Signature.Params, 1)
	})

	t.Run("folded enum", func(t *testing.T) {
		e := doc.Find("libvlc_state_t").(*ir.EnumDecl)
		assert.Equal(t, []int64{0, 1, 3, 4, 7, 31, 1381380914}, e.Values())
		assert.Equal(t, []string{"opening a media"}, e.Enumerators[1].Documentation.Lines)
		assert.True(t, e.Enumerators[2].Documentation.IsZero())
	})

	t.Run("struct members", func(t *testing.T) {
		s := doc.Find("libvlc_event_t").(*ir.StructDecl)
		assert.Equal(t, []string{"type", "p_obj", "flags", "kind", "psz_name", "pf_release", "p_next"}, fieldNames(s.Aggregate))
		assert.Equal(t, []string{"Event type"}, s.Aggregate.Field("type").(*ir.PrimitiveField).Documentation.Lines)
		assert.Equal(t, 4, s.Aggregate.Field("kind").(*ir.PrimitiveField).BitWidth)
		assert.Equal(t, "unsigned", s.Aggregate.Field("kind").(*ir.PrimitiveField).Type.Render())
		assert.Equal(t, []string{"64"}, s.Aggregate.Field("psz_name").(*ir.PrimitiveField).Type.Dims)

		cb := s.Aggregate.Field("pf_release").(*ir.PrimitiveField)
		assert.Equal(t, ir.TypeCallback, cb.Type.Kind)
		assert.Equal(t, "void (*pf_release)(void* opaque)", cb.Type.RenderDecl("pf_release"))

		next := s.Aggregate.Field("p_next").(*ir.PrimitiveField)
		assert.Equal(t, "struct libvlc_event_t*", next.Type.Render())
	})

	t.Run("version", func(t *testing.T) {
		assert.Empty(t, doc.Metadata().Version)
	})

	assert.Empty(t, doc.Validate())
}

func TestParse_Version(t *testing.T) {
	doc := parseFixture(t, "libvlc_version.h", Options{})
	assert.Equal(t, "3.0.20", doc.Metadata().Version)
	assert.Zero(t, doc.Len())
}

func TestParse_Exclude(t *testing.T) {
	doc := parseFixture(t, "enums.h", Options{Exclude: []string{"libvlc_enum_t", "libvlc_enum_with_docs"}})
	assert.Nil(t, doc.Find("libvlc_enum_t"))
	assert.Nil(t, doc.Find("libvlc_enum_with_docs"))
	assert.NotNil(t, doc.Find("libvlc_enum_with_docs_t"))
}

func TestParse_RequireDocs(t *testing.T) {
	doc := parseFixture(t, "callbacks.h", Options{RequireDocs: true})
	warnings := doc.Warnings()
	assert.Len(t, warnings, 8)
	for _, w := range warnings {
		assert.Equal(t, ir.MissingDocumentation, w.Kind)
		assert.NotEqual(t, "libvlc_with_docs_cb", w.Name)
	}
	// Warnings do not drop declarations.
	assert.Len(t, doc.Callbacks(), 9)
}

func TestParse_Workers(t *testing.T) {
	for _, name := range corpus.Names() {
		t.Run(name, func(t *testing.T) {
			serial := parseFixture(t, name, Options{IgnoreVisibility: true})
			parallel := parseFixture(t, name, Options{IgnoreVisibility: true, Workers: 4})
			assert.Equal(t, declNames(serial.Declarations()), declNames(parallel.Declarations()))
			assert.Equal(t, serial.Diagnostics(), parallel.Diagnostics())
		})
	}

	_, err := Parse(context.Background(), "", Options{Workers: -1})
	assert.Error(t, err)
}

func TestParse_Recovery(t *testing.T) {
	src := `
__attribute__((visibility("default"))) void libvlc_a(int x;
__attribute__((visibility("default"))) void libvlc_b(void);
enum libvlc_bad { X = 1 + };
enum libvlc_good { Y = 2 };
`
	doc, err := Parse(context.Background(), src, Options{Prefix: "libvlc_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"libvlc_b", "libvlc_good"}, declNames(doc.Declarations()))

	diags := doc.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, ir.SyntaxError, diags[0].Kind)
	assert.Equal(t, 2, diags[0].Span.StartLine)
	assert.Equal(t, ir.UnresolvedExpression, diags[1].Kind)
	assert.Equal(t, "libvlc_bad", diags[1].Name)
}

func TestParse_MalformedAggregateBody(t *testing.T) {
	src := `struct libvlc_a { int x; void (*f)(int; int y; };
__attribute__((visibility("default"))) void libvlc_ok(void);
`
	doc, err := Parse(context.Background(), src, Options{Prefix: "libvlc_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"libvlc_ok"}, declNames(doc.Declarations()))

	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, ir.SyntaxError, diags[0].Kind)
	assert.Equal(t, 1, diags[0].Span.StartLine)
	assert.Equal(t, 1, diags[0].Span.StartColumn)
}

func TestParse_ForwardTypedef(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"typedef first", "typedef struct libvlc_x libvlc_x;\nstruct libvlc_x { int a; };\n"},
		{"definition first", "struct libvlc_x { int a; };\ntypedef struct libvlc_x libvlc_x;\n"},
		{"typedef definition", "typedef struct libvlc_x libvlc_x;\ntypedef struct libvlc_x { int a; } libvlc_x;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(context.Background(), tt.src, Options{Prefix: "libvlc_"})
			require.NoError(t, err)
			assert.Empty(t, doc.Diagnostics())
			require.Equal(t, 1, doc.Len())

			s, ok := doc.Find("libvlc_x").(*ir.StructDecl)
			require.True(t, ok)
			assert.True(t, s.Typedef)
			assert.Equal(t, "libvlc_x", s.Tag)
			assert.Equal(t, []string{"a"}, fieldNames(s.Aggregate))
			assert.Empty(t, doc.Validate())
		})
	}

	t.Run("union tag does not match struct", func(t *testing.T) {
		src := "typedef struct libvlc_u libvlc_u_t;\nunion libvlc_u { int a; };\n"
		doc, err := Parse(context.Background(), src, Options{Prefix: "libvlc_"})
		require.NoError(t, err)
		td, ok := doc.Find("libvlc_u_t").(*ir.TypedefDecl)
		require.True(t, ok)
		assert.True(t, td.Opaque)
	})
}

func TestParse_EnumImplicitOverflow(t *testing.T) {
	src := `typedef enum libvlc_big_t {
    libvlc_big_max = 0x7fffffffffffffff,
    libvlc_big_next
} libvlc_big_t;
enum libvlc_small { libvlc_small_a };
`
	doc, err := Parse(context.Background(), src, Options{Prefix: "libvlc_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"libvlc_small"}, declNames(doc.Declarations()))

	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, ir.UnresolvedExpression, diags[0].Kind)
	assert.Equal(t, "libvlc_big_t", diags[0].Name)
	assert.Equal(t, 3, diags[0].Span.StartLine)
	assert.Contains(t, diags[0].Message, "libvlc_big_next")
}

func TestParse_UnterminatedComment(t *testing.T) {
	src := "enum libvlc_ok { A };\n/** never closed\nenum libvlc_lost { B };\n"
	doc, err := Parse(context.Background(), src, Options{Prefix: "libvlc_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"libvlc_ok"}, declNames(doc.Declarations()))
	require.Len(t, doc.Diagnostics(), 1)
	assert.Equal(t, ir.SyntaxError, doc.Diagnostics()[0].Kind)
}

func TestParse_ExternC(t *testing.T) {
	src := `extern "C" {
typedef void (*libvlc_cb)(void *data);
}`
	doc, err := Parse(context.Background(), src, Options{Prefix: "libvlc_"})
	require.NoError(t, err)
	assert.Empty(t, doc.Diagnostics())
	assert.Equal(t, []string{"libvlc_cb"}, declNames(doc.Callbacks()))
}

func TestParseType_RoundTrip(t *testing.T) {
	tests := []string{
		"int",
		"unsigned long long",
		"const char*",
		"char* const",
		"const char* const* const* const",
		"char* const* const* const",
		"const char** const",
		"char* const** const*",
		"struct libvlc_event_t*",
		"libvlc_media_t* const*",
		"void* (*)(const char*, int)",
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			typ, err := ParseType(expr)
			require.NoError(t, err)
			assert.Equal(t, expr, typ.Render())
		})
	}
}

func TestParseType_Errors(t *testing.T) {
	for _, expr := range []string{"", "*", "int )", "void (*)(void (*)(int))"} {
		_, err := ParseType(expr)
		assert.Error(t, err, expr)
	}
}
