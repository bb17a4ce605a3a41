package report

import (
	"errors"
	"reflect"
	"testing"
)

const kneeReport = `Findings/IMPRESSION: The patellofemoral view shows normal articular congruence, absence of joint ` +
	`space narrowing, no evidence of osteophytosis at the medial and lateral margins of the ` +
	`patellofemoral compartment. History: Knee pain Technique:XR KNEE 1 VIEW SPECIAL RIGHT Comparison: ` +
	`AP and lateral Knee radiograph 12/2/2019 Electronic Signature: I personally reviewed the images ` +
	`and agree with this report. Final Report: Dictated by and Signed by Attending Mitchell Kline MD ` +
	`12/18/2019 7:33 AM`

const addendumReport = `Please note there is considerable air in the impression. There is a fracture ` +
	`of the LATERAL malleolus, not the medial malleolus. This exam was discussed ` +
	`by Dr. Riviello with Fares on 12/20/2019 at 10:32 PM with readback verification. ` +
	`Electronic Signature: I personally reviewed the images and agree with this ` +
	`report. Final Report: Dictated by and Signed by Attending Peter Riviello MD ` +
	`12/20/2019 10:32 PM *******END OF ADDENDUM****** IMPRESSION: There is a minimally displaced ` +
	`fracture of the left medial malleolus below the level of the ankle mortise, with a horizontal ` +
	`orientation. The ankle mortise appears grossly congruent. No proximal leg ` +
	`fracture is seen. History: Trauma, left ankle pain. ` +
	`Technique: XR ANKLE AP LATERAL AND OBLIQUE LEFT Comparison: None ` +
	`Electronic Signature: I personally reviewed the images and agree with this ` +
	`report. Final Report: Dictated by and Signed by Attending Peter Riviello MD 12/20/2019 10:20 PM`

func TestNewLowercases(t *testing.T) {
	r := New("IMPRESSION: Lipoma", "Lipoma")
	if r.Text != "impression: lipoma" {
		t.Errorf("text not lowercased: %q", r.Text)
	}
	if r.GroundTruth != "lipoma" {
		t.Errorf("ground truth not lowercased: %q", r.GroundTruth)
	}
	if r.Predicted != "" {
		t.Error("prediction should start unset")
	}
}

func TestImpression(t *testing.T) {
	r := New(kneeReport, "")
	if !r.HasImpression() {
		t.Fatal("report should have an impression")
	}

	want := "the patellofemoral view shows normal articular congruence, absence of joint space narrowing, " +
		"no evidence of osteophytosis at the medial and lateral margins of the patellofemoral compartment."
	if got := r.Impression(); got != want {
		t.Errorf("impression mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestImpressionAfterAddendum(t *testing.T) {
	r := New(addendumReport, "")

	want := "there is a minimally displaced fracture of the left medial malleolus below the level of the " +
		"ankle mortise, with a horizontal orientation. the ankle mortise appears grossly congruent. " +
		"no proximal leg fracture is seen."
	if got := r.Impression(); got != want {
		t.Errorf("impression mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestImpressionMissing(t *testing.T) {
	r := New("Findings: normal study. History: pain", "")
	if r.HasImpression() {
		t.Fatal("report should not have an impression")
	}
	if got := r.Impression(); got != "" {
		t.Errorf("expected empty impression, got %q", got)
	}
	if _, err := r.ImpressionE(); !errors.Is(err, ErrNoImpression) {
		t.Errorf("expected ErrNoImpression, got %v", err)
	}
}

func TestImpressionStopsAtHeaderBeforeMarker(t *testing.T) {
	// a header ahead of the marker ends the scan before it starts
	r := New("History: pain. Impression: lipoma", "")
	if got := r.Impression(); got != "" {
		t.Errorf("expected empty impression, got %q", got)
	}
}

func TestImpressionMultiWordHeaderDoesNotTerminate(t *testing.T) {
	r := New("Impression: lipoma. Clinical indication: mass", "")
	if got := r.Impression(); got != "lipoma. clinical indication: mass" {
		t.Errorf("unexpected impression %q", got)
	}
}

func TestElectronicSignature(t *testing.T) {
	r := New(kneeReport, "")
	want := "i personally reviewed the images and agree with this report. final report: dictated by and " +
		"signed by attending mitchell kline md 12/18/2019 7:33 am"
	if got := r.ElectronicSignature(); got != want {
		t.Errorf("signature mismatch:\n got %q\nwant %q", got, want)
	}

	unsigned := New("impression: normal", "")
	if unsigned.HasElectronicSignature() {
		t.Error("unsigned report should not have a signature")
	}
	if got := unsigned.ElectronicSignature(); got != "" {
		t.Errorf("expected empty signature, got %q", got)
	}
}

func TestAuthorsSamePerson(t *testing.T) {
	r := New(kneeReport, "")
	dictator, signer, err := r.Authors()
	if err != nil {
		t.Fatalf("Authors: %v", err)
	}
	if dictator != "attending mitchell kline md" || signer != dictator {
		t.Errorf("got dictator %q signer %q", dictator, signer)
	}
}

func TestAuthorsDifferentPeople(t *testing.T) {
	r := New("Impression: normal. Electronic Signature: Final Report: Dictated by Resident Jane Doe MD "+
		"and Signed by Attending John Roe MD 01/02/2020 8:00 AM", "")

	d, err := r.Dictator()
	if err != nil {
		t.Fatalf("Dictator: %v", err)
	}
	s, err := r.Signer()
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if d != "resident jane doe md" {
		t.Errorf("dictator = %q", d)
	}
	if s != "attending john roe md" {
		t.Errorf("signer = %q", s)
	}
}

func TestAuthorsMissing(t *testing.T) {
	r := New("Impression: normal. Electronic Signature: pending", "")
	if _, _, err := r.Authors(); !errors.Is(err, ErrNoAuthors) {
		t.Errorf("expected ErrNoAuthors, got %v", err)
	}

	unsigned := New("Impression: normal", "")
	if _, _, err := unsigned.Authors(); !errors.Is(err, ErrNoSignature) {
		t.Errorf("expected ErrNoSignature, got %v", err)
	}
}

func TestIsPredictionRight(t *testing.T) {
	r := New("impression: lipoma", "")
	if _, err := r.IsPredictionRight(); !errors.Is(err, ErrNoGroundTruth) {
		t.Errorf("expected ErrNoGroundTruth, got %v", err)
	}

	r = New("impression: lipoma", "Lipoma")
	if _, err := r.IsPredictionRight(); !errors.Is(err, ErrNoPrediction) {
		t.Errorf("expected ErrNoPrediction, got %v", err)
	}

	r.Predicted = "LIPOMA"
	ok, err := r.IsPredictionRight()
	if err != nil || !ok {
		t.Errorf("expected match, got %v %v", ok, err)
	}

	r.Predicted = "enchondroma"
	ok, err = r.IsPredictionRight()
	if err != nil || ok {
		t.Errorf("expected mismatch, got %v %v", ok, err)
	}
}

func TestBigrams(t *testing.T) {
	got := Bigrams("a  b c")
	want := []string{"a b", "b c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
	if Bigrams("single") != nil {
		t.Error("one word has no bigrams")
	}
}

func TestLookIn(t *testing.T) {
	r := New("Impression: lipoma. History: mass", "")

	imp, err := r.LookIn(LookInImpression)
	if err != nil || imp != "lipoma." {
		t.Errorf("impression look-in = %q, %v", imp, err)
	}
	full, err := r.LookIn(LookInReport)
	if err != nil || full != r.Text {
		t.Errorf("report look-in = %q, %v", full, err)
	}
	if _, err := r.LookIn("footer"); !errors.Is(err, ErrInvalidLookIn) {
		t.Errorf("expected ErrInvalidLookIn, got %v", err)
	}

	mode, err := ParseLookIn(" Report ")
	if err != nil || mode != LookInReport {
		t.Errorf("ParseLookIn = %q, %v", mode, err)
	}
}

func TestValidate(t *testing.T) {
	if err := New("  \n", "").Validate(); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if err := New("impression: normal", "").Validate(); err != nil {
		t.Errorf("valid report failed: %v", err)
	}
}

func TestSectionOf(t *testing.T) {
	cases := map[string]BodySection{
		"SDR MSK week 3":      MSK,
		"sdr_nuc med_day2":    NucMed,
		"Chest crosswalk":     Chest,
		"unrelated file name": "",
	}
	for in, want := range cases {
		if got := SectionOf(in); got != want {
			t.Errorf("SectionOf(%q) = %q, want %q", in, got, want)
		}
	}

	if s, ok := ParseBodySection("peds"); !ok || s != PEDS {
		t.Errorf("ParseBodySection(peds) = %q %v", s, ok)
	}
	if len(AllBodySections()) != 9 {
		t.Error("expected nine body sections")
	}
}
