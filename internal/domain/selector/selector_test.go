package selector_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/okian/matchdesk/internal/domain/model"
	"github.com/okian/matchdesk/internal/domain/selector"
	"github.com/smartystreets/goconvey/convey"
)

func row(id, due string, names ...string) model.Assignment {
	a := model.Assignment{DemandID: model.ID(id), DueDate: due}
	for i, n := range names {
		a.ProfessionalIDs = append(a.ProfessionalIDs, model.ID(strconv.Itoa(i+1)))
		a.ProfessionalNames = append(a.ProfessionalNames, n)
	}
	return a
}

func TestParseKind(t *testing.T) {
	convey.Convey("Given completion menu choices", t, func() {
		convey.Convey("When the choice is valid", func() {
			k1, err1 := selector.ParseKind("1")
			k2, err2 := selector.ParseKind(" 2 ")
			k3, err3 := selector.ParseKind("3")

			convey.Convey("Then it should map to a kind", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(err3, convey.ShouldBeNil)
				convey.So(k1, convey.ShouldEqual, selector.KindProfessional)
				convey.So(k2, convey.ShouldEqual, selector.KindID)
				convey.So(k3, convey.ShouldEqual, selector.KindDateRange)
				convey.So(k3.String(), convey.ShouldEqual, "date_range")
			})
		})

		convey.Convey("When the choice is unknown", func() {
			_, err := selector.ParseKind("4")

			convey.Convey("Then it should be an invalid selector", func() {
				convey.So(errors.Is(err, selector.ErrInvalidSelector), convey.ShouldBeTrue)
			})
		})
	})
}

func TestByProfessional(t *testing.T) {
	convey.Convey("Given a professional selector", t, func() {
		s := selector.ByProfessional("B")

		convey.Convey("Then it should match scalar and merged rows", func() {
			convey.So(s.Match(row("10", "2024-01-01", "B")), convey.ShouldBeTrue)
			convey.So(s.Match(row("11", "2024-01-01", "A", "B")), convey.ShouldBeTrue)
			convey.So(s.Match(row("12", "2024-01-01", "A")), convey.ShouldBeFalse)
			convey.So(s.Match(row("13", "2024-01-01", "b")), convey.ShouldBeFalse)
			convey.So(s.Kind(), convey.ShouldEqual, selector.KindProfessional)
		})
	})
}

func TestByID(t *testing.T) {
	convey.Convey("Given an id selector", t, func() {
		s := selector.ByID("10")

		convey.Convey("Then it should match only that demand", func() {
			convey.So(s.Match(row("10", "2024-01-01", "A")), convey.ShouldBeTrue)
			convey.So(s.Match(row("100", "2024-01-01", "A")), convey.ShouldBeFalse)
			convey.So(s.String(), convey.ShouldEqual, "id 10")
		})
	})
}

func TestByDateRange(t *testing.T) {
	convey.Convey("Given a date range selector", t, func() {
		s, err := selector.ByDateRange("2024-01-01", "2024-01-31")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then both bounds should be inclusive", func() {
			convey.So(s.Match(row("1", "2024-01-01", "A")), convey.ShouldBeTrue)
			convey.So(s.Match(row("2", "2024-01-15", "A")), convey.ShouldBeTrue)
			convey.So(s.Match(row("3", "2024-01-31", "A")), convey.ShouldBeTrue)
		})

		convey.Convey("Then dates outside should not match", func() {
			convey.So(s.Match(row("4", "2023-12-31", "A")), convey.ShouldBeFalse)
			convey.So(s.Match(row("5", "2024-02-01", "A")), convey.ShouldBeFalse)
		})

		convey.Convey("Then comparison should be lexicographic", func() {
			convey.So(s.Match(row("6", "2024-01-31T10:00", "A")), convey.ShouldBeFalse)
			convey.So(s.Match(row("7", "2024-01-1", "A")), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given reversed bounds", t, func() {
		_, err := selector.ByDateRange("2024-02-01", "2024-01-01")

		convey.Convey("Then it should be an invalid range", func() {
			convey.So(errors.Is(err, selector.ErrInvalidRange), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a blank bound", t, func() {
		_, err := selector.ByDateRange(" ", "2024-01-01")

		convey.Convey("Then it should be an invalid range", func() {
			convey.So(errors.Is(err, selector.ErrInvalidRange), convey.ShouldBeTrue)
		})
	})
}
