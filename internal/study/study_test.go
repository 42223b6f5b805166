package study_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/solarscope-cli/internal/dataset"
	"github.com/KaramelBytes/solarscope-cli/internal/study"
)

func writeSite(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAddSiteSaveAndLoad(t *testing.T) {
	tdir := t.TempDir()
	benin := writeSite(t, tdir, "benin.csv", "Timestamp,GHI,DNI\n2021-08-09 00:01,1,2\n2021-08-09 00:02,3,4\n")
	togo := writeSite(t, tdir, "togo.csv", "Timestamp,GHI,DNI\n2021-08-09 00:01,5,6\n")

	st := study.NewStudy("westafrica", "site selection", filepath.Join(tdir, "study"))
	site, err := st.AddSite("benin", benin, "Malanville", dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("add benin: %v", err)
	}
	if site.Rows != 2 || site.ID == "" {
		t.Fatalf("unexpected site: %+v", site)
	}
	if _, err := st.AddSite("togo", togo, "", dataset.DefaultOptions()); err != nil {
		t.Fatalf("add togo: %v", err)
	}
	st.AddArtifact("summary", filepath.Join(st.ArtifactsDir(), "benin-summary.md"), "Summary", "benin")
	if err := st.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := study.LoadStudy(st.RootDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := strings.Join(loaded.SiteNames(), ","); got != "benin,togo" {
		t.Fatalf("site names %q", got)
	}
	if len(loaded.Sites["benin"].Columns) != 3 {
		t.Fatalf("columns not recorded: %v", loaded.Sites["benin"].Columns)
	}
	if len(loaded.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(loaded.Artifacts))
	}

	sites, err := loaded.LoadSites(dataset.NewCache(dataset.DefaultOptions(), nil))
	if err != nil {
		t.Fatalf("load sites: %v", err)
	}
	if len(sites) != 2 || sites[0].Name != "benin" || sites[0].Table.Len() != 2 {
		t.Fatalf("unexpected sites: %+v", sites)
	}

	out := loaded.Overview()
	for _, want := range []string{"[STUDY] westafrica", "[SITES]", "benin", "[ARTIFACTS]", "benin/summary"} {
		if !strings.Contains(out, want) {
			t.Fatalf("overview missing %q:\n%s", want, out)
		}
	}
}

func TestAddSiteRejectsUnreadableFile(t *testing.T) {
	st := study.NewStudy("s", "", t.TempDir())
	if _, err := st.AddSite("x", filepath.Join(t.TempDir(), "missing.csv"), "", dataset.DefaultOptions()); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := st.AddSite(" ", "whatever.csv", "", dataset.DefaultOptions()); err == nil {
		t.Fatal("expected error for blank name")
	}
	if len(st.Sites) != 0 {
		t.Fatalf("failed adds must not register sites")
	}
}

func TestArtifactsReplaceSamePath(t *testing.T) {
	st := study.NewStudy("s", "", t.TempDir())
	p := filepath.Join(st.ArtifactsDir(), "heatmap.png")
	st.AddArtifact("heatmap", p, "first", "benin")
	st.AddArtifact("heatmap", p, "second", "benin")
	list := st.ArtifactList()
	if len(list) != 1 || list[0].Title != "second" {
		t.Fatalf("unexpected artifacts: %+v", list)
	}
}

func TestRemoveSite(t *testing.T) {
	tdir := t.TempDir()
	p := writeSite(t, tdir, "a.csv", "GHI\n1\n")
	st := study.NewStudy("s", "", tdir)
	if _, err := st.AddSite("a", p, "", dataset.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if err := st.RemoveSite("a"); err != nil {
		t.Fatal(err)
	}
	if err := st.RemoveSite("a"); err == nil {
		t.Fatal("expected ErrSiteNotFound")
	}
}

func TestLoadStudyMissing(t *testing.T) {
	if _, err := study.LoadStudy(t.TempDir()); err == nil {
		t.Fatal("expected error")
	}
}
