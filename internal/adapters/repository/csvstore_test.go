package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/matchdesk/internal/adapters/repository"
	"github.com/okian/matchdesk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleEntries() []model.Assignment {
	return []model.Assignment{
		{DemandID: "10", Subject: "Math", DueDate: "2024-01-01", ProfessionalIDs: []model.ID{"1", "2"}, ProfessionalNames: []string{"Ana", "Bruno"}},
		{DemandID: "11", Subject: "Math", DueDate: "2024-02-01", ProfessionalIDs: []model.ID{"1"}, ProfessionalNames: []string{"Ana"}},
		{DemandID: "D-12", Subject: "Art, Modern", DueDate: "2024-03-01", ProfessionalIDs: []model.ID{"p-9"}, ProfessionalNames: []string{`[guest] "Zé"`}},
	}
}

func TestCSVStore_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store path with no file", t, func() {
		dir := t.TempDir()
		storePath := filepath.Join(dir, "database.csv")
		exportPath := filepath.Join(dir, "database.json")
		store := repository.NewCSVStore(storePath, repository.WithExportPath(exportPath))

		Convey("Then it should not exist", func() {
			exists, err := store.Exists(ctx)
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})

		Convey("Then loading should report StoreNotFound", func() {
			_, err := store.Load(ctx)
			So(errors.Is(err, repository.ErrStoreNotFound), ShouldBeTrue)
		})

		Convey("Then appending should report StoreNotFound", func() {
			_, err := store.Append(ctx, sampleEntries())
			So(errors.Is(err, repository.ErrStoreNotFound), ShouldBeTrue)
		})

		Convey("Then removing should report StoreNotFound", func() {
			_, err := store.Remove(ctx, func(model.Assignment) bool { return true })
			So(errors.Is(err, repository.ErrStoreNotFound), ShouldBeTrue)
		})

		Convey("When initialized", func() {
			entries := sampleEntries()
			So(store.Initialize(ctx, entries), ShouldBeNil)

			Convey("Then loading should return the same entries in order", func() {
				loaded, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(loaded, ShouldResemble, entries)
			})

			Convey("Then the CSV should use the documented header and encoding", func() {
				data, err := os.ReadFile(storePath)
				So(err, ShouldBeNil)
				So(string(data), ShouldStartWith, "professional_id,professional_name,subject,due_date,demand_id\n")
				So(string(data), ShouldContainSubstring, `"[""1"",""2""]","[""Ana"",""Bruno""]",Math,2024-01-01,10`)
				So(string(data), ShouldContainSubstring, "1,Ana,Math,2024-02-01,11")
			})

			Convey("Then the export should mirror the table with numeric ids", func() {
				data, err := os.ReadFile(exportPath)
				So(err, ShouldBeNil)

				var records []map[string]any
				So(json.Unmarshal(data, &records), ShouldBeNil)
				So(records, ShouldHaveLength, 3)
				So(records[0]["professional_id"], ShouldResemble, []any{float64(1), float64(2)})
				So(records[0]["professional_name"], ShouldResemble, []any{"Ana", "Bruno"})
				So(records[1]["professional_id"], ShouldEqual, float64(1))
				So(records[1]["demand_id"], ShouldEqual, float64(11))
				So(records[2]["demand_id"], ShouldEqual, "D-12")
			})

			Convey("Then initializing again should fail with StoreExists", func() {
				err := store.Initialize(ctx, nil)
				So(errors.Is(err, repository.ErrStoreExists), ShouldBeTrue)

				loaded, _ := store.Load(ctx)
				So(loaded, ShouldHaveLength, 3)
			})

			Convey("When appending a known demand and a new one", func() {
				stats, err := store.Append(ctx, []model.Assignment{
					{DemandID: "11", Subject: "Math", DueDate: "2024-02-01", ProfessionalIDs: []model.ID{"3"}, ProfessionalNames: []string{"Caio"}},
					{DemandID: "20", Subject: "Math", DueDate: "2024-05-01", ProfessionalIDs: []model.ID{"3"}, ProfessionalNames: []string{"Caio"}},
				})

				Convey("Then the known demand should merge and the new one append", func() {
					So(err, ShouldBeNil)
					So(stats.Added, ShouldEqual, 1)
					So(stats.Merged, ShouldEqual, 1)

					loaded, err := store.Load(ctx)
					So(err, ShouldBeNil)
					So(loaded, ShouldHaveLength, 4)
					So(loaded[1].ProfessionalIDs, ShouldResemble, []model.ID{"1", "3"})
					So(loaded[1].ProfessionalNames, ShouldResemble, []string{"Ana", "Caio"})
					So(loaded[3].DemandID, ShouldEqual, model.ID("20"))
				})

				Convey("And the export should follow", func() {
					data, err := os.ReadFile(exportPath)
					So(err, ShouldBeNil)
					var records []map[string]any
					So(json.Unmarshal(data, &records), ShouldBeNil)
					So(records, ShouldHaveLength, 4)
				})
			})

			Convey("When appending only pairs already stored", func() {
				stats, err := store.Append(ctx, entries[:1])

				Convey("Then nothing should change", func() {
					So(err, ShouldBeNil)
					So(stats.Unchanged, ShouldEqual, 2)
					loaded, _ := store.Load(ctx)
					So(loaded, ShouldResemble, entries)
				})
			})

			Convey("When removing by predicate", func() {
				removed, err := store.Remove(ctx, func(a model.Assignment) bool { return a.HasProfessionalName("Ana") })

				Convey("Then matched rows should be gone and the rest kept in order", func() {
					So(err, ShouldBeNil)
					So(removed, ShouldEqual, 2)
					loaded, err := store.Load(ctx)
					So(err, ShouldBeNil)
					So(loaded, ShouldResemble, entries[2:])
				})
			})

			Convey("When removing with a predicate that matches nothing", func() {
				removed, err := store.Remove(ctx, func(model.Assignment) bool { return false })

				Convey("Then the count should be zero and the table unchanged", func() {
					So(err, ShouldBeNil)
					So(removed, ShouldEqual, 0)
					loaded, _ := store.Load(ctx)
					So(loaded, ShouldResemble, entries)
				})
			})

			Convey("When every row is removed", func() {
				removed, err := store.Remove(ctx, func(model.Assignment) bool { return true })

				Convey("Then the store should exist but be empty", func() {
					So(err, ShouldBeNil)
					So(removed, ShouldEqual, 3)
					exists, _ := store.Exists(ctx)
					So(exists, ShouldBeTrue)
					loaded, err := store.Load(ctx)
					So(err, ShouldBeNil)
					So(loaded, ShouldBeEmpty)
				})
			})
		})
	})
}

func TestCSVStore_Export(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store without an export path", t, func() {
		dir := t.TempDir()
		store := repository.NewCSVStore(filepath.Join(dir, "database.csv"))

		Convey("When initialized", func() {
			So(store.Initialize(ctx, sampleEntries()), ShouldBeNil)

			Convey("Then only the CSV should be written", func() {
				files, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(files, ShouldHaveLength, 1)
				So(files[0].Name(), ShouldEqual, "database.csv")
			})
		})
	})

	Convey("Given an export path that cannot be written", t, func() {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		So(os.WriteFile(blocker, []byte("x"), 0o600), ShouldBeNil)
		store := repository.NewCSVStore(filepath.Join(dir, "database.csv"),
			repository.WithExportPath(filepath.Join(blocker, "database.json")))

		Convey("When initialized", func() {
			err := store.Initialize(ctx, sampleEntries())

			Convey("Then the export failure should be reported but the store written", func() {
				So(errors.Is(err, repository.ErrExportFailed), ShouldBeTrue)
				loaded, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(loaded, ShouldHaveLength, 3)
			})
		})
	})
}

func TestCSVStore_Corrupt(t *testing.T) {
	ctx := context.Background()

	cases := map[string]string{
		"missing column":     "professional_id,professional_name,subject,due_date\n1,A,Math,2024-01-01\n",
		"empty file":         "",
		"mismatched lengths": "professional_id,professional_name,subject,due_date,demand_id\n\"[\"\"1\"\",\"\"2\"\"]\",A,Math,2024-01-01,10\n",
		"bad sequence":       "professional_id,professional_name,subject,due_date,demand_id\n1,\"[A, B]\",Math,2024-01-01,10\n",
	}

	for name, content := range cases {
		Convey("Given a store file with "+name, t, func() {
			path := filepath.Join(t.TempDir(), "database.csv")
			So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

			Convey("Then loading should report a corrupt store", func() {
				_, err := repository.NewCSVStore(path).Load(ctx)
				So(errors.Is(err, repository.ErrCorruptStore), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, path)
			})
		})
	}
}

func TestCSVStore_LegacyNestedCells(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store written with nested assignee sequences", t, func() {
		path := filepath.Join(t.TempDir(), "database.csv")
		content := "professional_id,professional_name,subject,due_date,demand_id\n" +
			"\"[[1, 2], 3]\",\"[[\"\"A\"\", \"\"B\"\"], \"\"C\"\"]\",Math,2024-01-01,10\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			loaded, err := repository.NewCSVStore(path).Load(ctx)

			Convey("Then the assignees should be flattened", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldHaveLength, 1)
				So(loaded[0].ProfessionalIDs, ShouldResemble, []model.ID{"1", "2", "3"})
				So(loaded[0].ProfessionalNames, ShouldResemble, []string{"A", "B", "C"})
			})
		})
	})
}

func TestCSVStore_PaddedIdentifiers(t *testing.T) {
	ctx := context.Background()

	Convey("Given entries whose ids carry surrounding whitespace", t, func() {
		store := repository.NewCSVStore(filepath.Join(t.TempDir(), "database.csv"))
		entries := []model.Assignment{
			{DemandID: "10 ", Subject: "Math", DueDate: "2024-01-01", ProfessionalIDs: []model.ID{" 1"}, ProfessionalNames: []string{"Ana"}},
			{DemandID: " 11", Subject: "Math", DueDate: "2024-01-02", ProfessionalIDs: []model.ID{" 1", "2 "}, ProfessionalNames: []string{"Ana", "Bruno"}},
		}

		Convey("When initialized and loaded back", func() {
			So(store.Initialize(ctx, entries), ShouldBeNil)
			loaded, err := store.Load(ctx)

			Convey("Then the ids should keep their exact text", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldResemble, entries)
			})
		})
	})
}

func TestCSVStore_ListLiteralCells(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store whose assignee cells are single-quoted list literals", t, func() {
		path := filepath.Join(t.TempDir(), "database.csv")
		content := "professional_id,professional_name,subject,due_date,demand_id\n" +
			"\"[[1, 2], 3]\",\"[['A', 'B'], 'C']\",Math,2024-01-01,10\n"
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			loaded, err := repository.NewCSVStore(path).Load(ctx)

			Convey("Then the names should be flattened alongside the ids", func() {
				So(err, ShouldBeNil)
				So(loaded, ShouldHaveLength, 1)
				So(loaded[0].ProfessionalIDs, ShouldResemble, []model.ID{"1", "2", "3"})
				So(loaded[0].ProfessionalNames, ShouldResemble, []string{"A", "B", "C"})
			})
		})
	})
}
