package lexicon

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLexiconBasic(t *testing.T) {
	lex := New()
	lex.AddSynonymGroup("Aneurysmal Bone Cyst", []string{"ABC", "aneurysmal  bone cyst"})

	if got := lex.Normalize("abc"); got != "aneurysmal bone cyst" {
		t.Errorf("Normalize(abc) = %q", got)
	}
	if got := lex.Normalize("lipoma"); got != "lipoma" {
		t.Errorf("unknown term should pass through, got %q", got)
	}

	want := []string{"aneurysmal bone cyst", "abc"}
	if got := lex.Variants("ABC"); !reflect.DeepEqual(got, want) {
		t.Errorf("Variants = %v want %v", got, want)
	}
	if got := lex.Variants("lipoma"); !reflect.DeepEqual(got, []string{"lipoma"}) {
		t.Errorf("unknown variants = %v", got)
	}
}

func TestLexiconRebuildGroup(t *testing.T) {
	lex := New()
	lex.AddSynonymGroup("osteoarthritis", []string{"djd", "oa"})
	lex.AddSynonymGroup("osteoarthritis", []string{"degenerative joint disease"})

	if lex.HasSynonyms("djd") {
		t.Error("old variant should be dropped when the group is rebuilt")
	}
	if got := lex.Normalize("degenerative joint disease"); got != "osteoarthritis" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestLexiconSharedVariantKeepsFirstOwner(t *testing.T) {
	lex := FromMap(map[string][]string{
		"enchondroma":      {"chondroid lesion"},
		"chondrosarcoma":   {"chondroid lesion"},
		"giant cell tumor": {"gct"},
	})

	// sorted order: chondrosarcoma claims the shared synonym first
	if got := lex.Normalize("chondroid lesion"); got != "chondrosarcoma" {
		t.Errorf("shared synonym owner = %q", got)
	}
	if got := lex.Variants("enchondroma"); !reflect.DeepEqual(got, []string{"enchondroma"}) {
		t.Errorf("enchondroma variants = %v", got)
	}
}

func TestLexiconRestrict(t *testing.T) {
	lex := FromMap(map[string][]string{
		"lipoma":       {"fatty tumor"},
		"osteoma":      {"bone island"},
		"nerve sheath": {"schwannoma"},
	})

	small := lex.Restrict([]string{"Lipoma", "fracture"})
	if small.Stats().SynonymGroups != 1 {
		t.Errorf("expected 1 group, got %+v", small.Stats())
	}
	if small.Normalize("fatty tumor") != "lipoma" {
		t.Error("restricted lexicon lost the lipoma group")
	}
	if small.HasSynonyms("bone island") {
		t.Error("restricted lexicon should not know osteoma")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := `synonyms:
  - canonical: aneurysmal bone cyst
    variants: [abc]
  - canonical: osteoarthritis
    variants: [degenerative joint disease, djd]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	stats := lex.Stats()
	if stats.SynonymGroups != 2 || stats.TotalVariants != 5 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if lex.Normalize("DJD") != "osteoarthritis" {
		t.Error("djd should normalize to osteoarthritis")
	}
}

func TestLoadFromYAMLErrors(t *testing.T) {
	if _, err := LoadFromYAML("/nonexistent/lexicon.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("synonyms: [unclosed\n"), 0644)
	if _, err := LoadFromYAML(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
