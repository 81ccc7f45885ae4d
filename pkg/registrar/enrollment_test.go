package registrar_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
)

func (s *RegistrarSuite) TestEnrollDefaults() {
	section := s.createSection("STEM-A", models.StrandSTEM, 40, nil)

	student := s.enroll(models.StrandSTEM, 10000)
	s.Require().NotNil(student.SectionID)
	s.Assert().Equal(section.ID, *student.SectionID)
	s.Assert().Equal(models.StudentEnrolled, student.Status)
	s.Assert().Equal(models.PaymentPending, student.PaymentStatus)
	s.Assert().Equal(s.now, student.EnrollmentDate)
	s.Assert().True(decimal.NewFromInt(10000).Equal(student.Balance))
	s.Assert().Equal("Academic", student.Track)
	s.Assert().Equal("11", student.GradeLevel)
	s.Assert().Equal("Full Payment", student.PaymentMode)
	s.Assert().Equal("N/A", student.Address)
	s.Assert().Equal("Student Number 1", student.FullName)

	history, err := s.r.Enrollment.SectionHistory(s.ctx, student.ID)
	s.Require().Nil(err)
	s.Require().Len(history, 1)
	s.Assert().True(history[0].IsCurrent)
	s.Assert().Equal(section.ID, history[0].SectionID)
}

func (s *RegistrarSuite) TestEnrollZeroFeesIsPaid() {
	student := s.enroll(models.StrandABM, 0)
	s.Assert().Equal(models.PaymentPaid, student.PaymentStatus, "nothing is owed")

	// Reaching zero fees through an update gives the same status
	other := s.enroll(models.StrandABM, 5000)
	s.Require().Equal(models.PaymentPending, other.PaymentStatus)

	updated, err := s.r.Enrollment.Update(s.ctx, other.ID, registrar.StudentUpdate{TotalFees: ptr(decimal.Zero)}, nil)
	s.Require().Nil(err)
	s.Assert().Equal(student.PaymentStatus, updated.PaymentStatus)
}

func (s *RegistrarSuite) TestEnrollValidationListsEveryField() {
	_, err := s.r.Enrollment.Enroll(s.ctx, registrar.EnrollInput{LRN: "12345", Email: "missing-at"}, nil)

	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)

	fields := []string{}
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	s.Assert().ElementsMatch([]string{"lrn", "firstName", "lastName", "email", "strand"}, fields)
}

func (s *RegistrarSuite) TestEnrollDuplicateLRN() {
	first := s.enroll(models.StrandSTEM, 10000)

	in := s.enrollInput(models.StrandABM, 5000)
	in.LRN = first.LRN
	_, err := s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Assert().ErrorIs(err, models.ErrDuplicateKey)

	unchanged, err := s.r.Enrollment.GetByID(s.ctx, first.ID)
	s.Require().Nil(err)
	s.Assert().Equal(models.StrandSTEM, unchanged.Strand)
	s.Assert().Equal(first.Email, unchanged.Email)
}

func (s *RegistrarSuite) TestEnrollDuplicateEmail() {
	first := s.enroll(models.StrandSTEM, 0)

	in := s.enrollInput(models.StrandSTEM, 0)
	in.Email = first.Email
	_, err := s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Assert().ErrorIs(err, models.ErrDuplicateKey)
}

func (s *RegistrarSuite) TestEnrollSectionOfOtherStrand() {
	section := s.createSection("ABM-A", models.StrandABM, 40, nil)

	in := s.enrollInput(models.StrandSTEM, 0)
	in.SectionID = &section.ID
	_, err := s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Assert().ErrorIs(err, models.ErrValidation)
}

func (s *RegistrarSuite) TestEnrollUsesActiveYear() {
	year, err := s.r.AcademicYears.Add(s.ctx, registrar.AcademicYearInput{
		YearName:  "2024-2025",
		StartDate: dateOf(2024, time.June, 3),
		EndDate:   dateOf(2025, time.March, 28),
		IsActive:  true,
	})
	s.Require().Nil(err)

	student := s.enroll(models.StrandSTEM, 0)
	s.Require().NotNil(student.AcademicYearID)
	s.Assert().Equal(year.ID, *student.AcademicYearID)
}

func (s *RegistrarSuite) TestUpdateStatusWritesHistory() {
	student := s.enroll(models.StrandSTEM, 0)
	actor := uuid.New()

	updated, err := s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{
		Status:       ptr(models.StudentDropped),
		StatusReason: ptr("Moved to another city"),
	}, &actor)
	s.Require().Nil(err)
	s.Assert().Equal(models.StudentDropped, updated.Status)
	s.Require().NotNil(updated.StatusChangedAt)
	s.Assert().Equal(s.now, *updated.StatusChangedAt)
	s.Assert().Equal(actor, *updated.StatusChangedBy)

	history, err := s.r.Enrollment.StatusHistory(s.ctx, student.ID)
	s.Require().Nil(err)
	s.Require().Len(history, 1)
	s.Assert().Equal(models.StudentEnrolled, history[0].OldStatus)
	s.Assert().Equal(models.StudentDropped, history[0].NewStatus)
	s.Assert().Equal("Moved to another city", history[0].Reason)
	s.Assert().Equal(actor, *history[0].ChangedBy)

	// Setting the same status again is not a change
	_, err = s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{Status: ptr(models.StudentDropped)}, &actor)
	s.Require().Nil(err)
	history, err = s.r.Enrollment.StatusHistory(s.ctx, student.ID)
	s.Require().Nil(err)
	s.Assert().Len(history, 1)
}

func (s *RegistrarSuite) TestUpdateSectionWritesAssignments() {
	a := s.createSection("STEM-A", models.StrandSTEM, 40, nil)
	b := s.createSection("STEM-B", models.StrandSTEM, 40, nil)

	student := s.enroll(models.StrandSTEM, 0)
	s.Require().Equal(a.ID, *student.SectionID, "ties go to the first section by name")

	updated, err := s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{SectionID: &b.ID}, nil)
	s.Require().Nil(err)
	s.Assert().Equal(b.ID, *updated.SectionID)

	history, err := s.r.Enrollment.SectionHistory(s.ctx, student.ID)
	s.Require().Nil(err)
	s.Require().Len(history, 2)
	s.Assert().Equal(b.ID, history[0].SectionID)
	s.Assert().True(history[0].IsCurrent)
	s.Assert().Equal(a.ID, history[1].SectionID)
	s.Assert().False(history[1].IsCurrent)
	s.Assert().NotNil(history[1].RemovedDate)

	// The nil UUID removes the student from the section
	updated, err = s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{SectionID: &uuid.Nil}, nil)
	s.Require().Nil(err)
	s.Assert().Nil(updated.SectionID)

	history, err = s.r.Enrollment.SectionHistory(s.ctx, student.ID)
	s.Require().Nil(err)
	for _, h := range history {
		s.Assert().False(h.IsCurrent)
	}
}

func (s *RegistrarSuite) TestUpdateSectionOfOtherStrand() {
	s.createSection("STEM-A", models.StrandSTEM, 40, nil)
	abm := s.createSection("ABM-A", models.StrandABM, 40, nil)

	student := s.enroll(models.StrandSTEM, 0)
	s.Require().NotNil(student.SectionID)

	_, err := s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{SectionID: &abm.ID}, nil)
	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Assert().Equal("sectionId", verr.Fields[0].Field)

	// Changing the strand while staying in a STEM section
	_, err = s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{Strand: ptr(models.StrandABM)}, nil)
	s.Require().ErrorAs(err, &verr)
	s.Assert().Equal("strand", verr.Fields[0].Field)

	// Moving strand and section together is fine
	updated, err := s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{Strand: ptr(models.StrandABM), SectionID: &abm.ID}, nil)
	s.Require().Nil(err)
	s.Assert().Equal(models.StrandABM, updated.Strand)
	s.Assert().Equal(abm.ID, *updated.SectionID)

	section, err := s.r.Sections.GetByID(s.ctx, abm.ID)
	s.Require().Nil(err)
	s.Assert().Equal(1, section.StudentCount)
}

func (s *RegistrarSuite) TestUpdateReenrollIntoFullSection() {
	section := s.createSection("TVL-A", models.StrandTVL, 1, nil)
	student := s.enroll(models.StrandTVL, 0)

	_, err := s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{Status: ptr(models.StudentDropped)}, nil)
	s.Require().Nil(err)

	s.fill(section, 1)

	_, err = s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{Status: ptr(models.StudentEnrolled)}, nil)
	s.Assert().ErrorIs(err, models.ErrSectionFull)
}

func (s *RegistrarSuite) TestUpdateFieldsAndFees() {
	student := s.enroll(models.StrandSTEM, 10000)

	updated, err := s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{
		FirstName:  ptr("Juan"),
		GradeLevel: ptr("12"),
		TotalFees:  ptr(decimal.NewFromInt(12000)),
	}, nil)
	s.Require().Nil(err)
	s.Assert().Equal("Juan Number 1", updated.FullName)
	s.Assert().Equal("12", updated.GradeLevel)
	s.Assert().True(decimal.NewFromInt(12000).Equal(updated.Balance))

	updated, err = s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{PaymentStatus: ptr(models.PaymentPaid)}, nil)
	s.Require().Nil(err)
	s.Assert().Equal(models.PaymentPaid, updated.PaymentStatus, "payment status can be overridden manually")
}

func (s *RegistrarSuite) TestUpdateValidation() {
	student := s.enroll(models.StrandSTEM, 0)

	_, err := s.r.Enrollment.Update(s.ctx, student.ID, registrar.StudentUpdate{
		Email:  ptr("nope"),
		Strand: ptr(models.Strand("ART")),
	}, nil)

	var verr *models.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Assert().Len(verr.Fields, 2)
}

func (s *RegistrarSuite) TestDeleteStudent() {
	student := s.enroll(models.StrandSTEM, 10000)
	_, err := s.r.Payments.AddPayment(s.ctx, s.paymentInput(student.ID, 1000), nil)
	s.Require().Nil(err)

	s.Require().Nil(s.r.Enrollment.Delete(s.ctx, student.ID))

	_, err = s.r.Enrollment.GetByID(s.ctx, student.ID)
	s.Assert().ErrorIs(err, models.ErrResourceNotFound)

	var payments int64
	s.Require().Nil(s.db.Model(&models.Payment{}).Count(&payments).Error)
	s.Assert().Equal(int64(0), payments)

	s.Assert().ErrorIs(s.r.Enrollment.Delete(s.ctx, student.ID), models.ErrResourceNotFound)
}

func (s *RegistrarSuite) TestListBySection() {
	section := s.createSection("STEM-A", models.StrandSTEM, 40, nil)

	in := s.enrollInput(models.StrandSTEM, 0)
	in.FirstName = "Zed"
	_, err := s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Require().Nil(err)

	in = s.enrollInput(models.StrandSTEM, 0)
	in.FirstName = "Ana"
	_, err = s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Require().Nil(err)

	students, err := s.r.Enrollment.ListBySection(s.ctx, section.ID)
	s.Require().Nil(err)
	s.Require().Len(students, 2)
	s.Assert().Equal("Ana Number 2", students[0].FullName)
	s.Require().NotNil(students[0].SectionName)
	s.Assert().Equal("STEM-A", *students[0].SectionName)

	_, err = s.r.Enrollment.ListBySection(s.ctx, uuid.New())
	s.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (s *RegistrarSuite) TestSearch() {
	in := s.enrollInput(models.StrandSTEM, 0)
	in.FirstName = "Maricel"
	_, err := s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Require().Nil(err)

	s.enroll(models.StrandHUMSS, 0)
	latest := s.enroll(models.StrandHUMSS, 0)

	found, err := s.r.Enrollment.Search(s.ctx, "MARICEL")
	s.Require().Nil(err)
	s.Assert().Len(found, 1)

	found, err = s.r.Enrollment.Search(s.ctx, "humss")
	s.Require().Nil(err)
	s.Require().Len(found, 2)
	s.Assert().Equal(latest.ID, found[0].ID, "latest enrollment first")

	found, err = s.r.Enrollment.Search(s.ctx, "student3@")
	s.Require().Nil(err)
	s.Assert().Len(found, 1)
}

func (s *RegistrarSuite) TestAdvancedSearch() {
	stem := s.enroll(models.StrandSTEM, 10000)
	s.enroll(models.StrandABM, 0)

	in := s.enrollInput(models.StrandSTEM, 0)
	in.Gender = "Female"
	in.GradeLevel = "12"
	female, err := s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Require().Nil(err)

	found, err := s.r.Enrollment.AdvancedSearch(s.ctx, registrar.StudentFilter{Strand: models.StrandSTEM})
	s.Require().Nil(err)
	s.Assert().Len(found, 2)

	found, err = s.r.Enrollment.AdvancedSearch(s.ctx, registrar.StudentFilter{Strand: models.StrandSTEM, Gender: "Female", GradeLevel: "12"})
	s.Require().Nil(err)
	s.Require().Len(found, 1)
	s.Assert().Equal(female.ID, found[0].ID)

	found, err = s.r.Enrollment.AdvancedSearch(s.ctx, registrar.StudentFilter{Name: stem.LRN})
	s.Require().Nil(err)
	s.Require().Len(found, 1)
	s.Assert().Equal(stem.ID, found[0].ID)

	found, err = s.r.Enrollment.AdvancedSearch(s.ctx, registrar.StudentFilter{PaymentStatus: models.PaymentPending})
	s.Require().Nil(err)
	s.Require().Len(found, 1)
	s.Assert().Equal(stem.ID, found[0].ID)

	found, err = s.r.Enrollment.AdvancedSearch(s.ctx, registrar.StudentFilter{PaymentStatus: models.PaymentPartial})
	s.Require().Nil(err)
	s.Assert().Len(found, 0)
}

func (s *RegistrarSuite) TestSearchEscapesWildcards() {
	in := s.enrollInput(models.StrandSTEM, 0)
	in.Email = "maria_cruz@example.com"
	maria, err := s.r.Enrollment.Enroll(s.ctx, in, nil)
	s.Require().Nil(err)
	s.enroll(models.StrandSTEM, 0)

	found, err := s.r.Enrollment.Search(s.ctx, "_")
	s.Require().Nil(err)
	s.Require().Len(found, 1)
	s.Assert().Equal(maria.ID, found[0].ID)

	found, err = s.r.Enrollment.Search(s.ctx, "%")
	s.Require().Nil(err)
	s.Assert().Len(found, 0)

	found, err = s.r.Enrollment.AdvancedSearch(s.ctx, registrar.StudentFilter{Name: "_"})
	s.Require().Nil(err)
	s.Assert().Len(found, 1)
}

func (s *RegistrarSuite) TestSearchLimits() {
	students := make([]models.Student, 0, 101)
	for i := 0; i < 101; i++ {
		students = append(students, s.enroll(models.StrandGAS, 0))
	}

	found, err := s.r.Enrollment.Search(s.ctx, "student")
	s.Require().Nil(err)
	s.Require().Len(found, 50)
	for i, f := range found {
		s.Assert().Equal(students[100-i].ID, f.ID, "newest enrollments are kept")
	}

	found, err = s.r.Enrollment.AdvancedSearch(s.ctx, registrar.StudentFilter{})
	s.Require().Nil(err)
	s.Require().Len(found, 100)
	s.Assert().Equal(students[100].ID, found[0].ID)
	s.Assert().Equal(students[1].ID, found[99].ID, "the oldest enrollment is dropped")
}

func (s *RegistrarSuite) TestRecentAndDateRange() {
	first := s.enroll(models.StrandSTEM, 0)
	cutoff := s.now
	second := s.enroll(models.StrandSTEM, 0)
	third := s.enroll(models.StrandSTEM, 0)

	recent, err := s.r.Enrollment.Recent(s.ctx, 2)
	s.Require().Nil(err)
	s.Require().Len(recent, 2)
	s.Assert().Equal(third.ID, recent[0].ID)
	s.Assert().Equal(second.ID, recent[1].ID)

	since := cutoff.Add(time.Second)
	ranged, err := s.r.Enrollment.ByDateRange(s.ctx, &since, nil, 0)
	s.Require().Nil(err)
	s.Assert().Len(ranged, 2)

	until := cutoff
	ranged, err = s.r.Enrollment.ByDateRange(s.ctx, nil, &until, 0)
	s.Require().Nil(err)
	s.Require().Len(ranged, 1)
	s.Assert().Equal(first.ID, ranged[0].ID)
}

func (s *RegistrarSuite) TestStats() {
	a := s.createSection("STEM-A", models.StrandSTEM, 40, nil)
	s.createSection("ABM-A", models.StrandABM, 30, nil)
	s.fill(a, 3)
	cutoff := s.now
	s.enroll(models.StrandABM, 0)
	s.enroll(models.StrandGAS, 0)

	stats, err := s.r.Enrollment.Stats(s.ctx, nil)
	s.Require().Nil(err)
	s.Assert().Equal(int64(5), stats.TotalEnrolled)
	s.Assert().Equal(int64(70), stats.TotalSlots)
	s.Assert().Equal(int64(65), stats.AvailableSlots)

	s.Require().Len(stats.ByStrand, 5, "every strand is reported")
	expected := map[models.Strand][2]int64{
		models.StrandSTEM:  {3, 40},
		models.StrandABM:   {1, 30},
		models.StrandHUMSS: {0, 0},
		models.StrandGAS:   {1, 0},
		models.StrandTVL:   {0, 0},
	}
	for _, st := range stats.ByStrand {
		s.Assert().Equal(expected[st.Name][0], st.Enrolled, st.Name)
		s.Assert().Equal(expected[st.Name][1], st.TotalSlots, st.Name)
	}

	since := cutoff.Add(time.Second)
	stats, err = s.r.Enrollment.Stats(s.ctx, &since)
	s.Require().Nil(err)
	s.Assert().Equal(int64(2), stats.TotalEnrolled)
	s.Assert().Equal(int64(70), stats.TotalSlots, "slots do not depend on the date")
}
