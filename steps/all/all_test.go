package all

import (
	"testing"

	"tabula/internal/transform"
)

func TestRegister_InstallsBuiltins(t *testing.T) {
	r := transform.NewRegistry()
	if err := Register(r, Deps{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	for _, name := range []string{
		"RenameTransformer",
		"FillEmptyCountsTransformer",
		"AddExternalColumnTransformer",
		"WindowByDaysTransformer",
		"RemoteTransformer",
	} {
		if !r.Has(name) {
			t.Errorf("%s not registered", name)
		}
	}
	if err := Register(r, Deps{}); err == nil {
		t.Fatal("second Register should fail on duplicates")
	}
}
