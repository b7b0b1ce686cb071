package portal

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"visa-advisory-portal/internal/apiclient"
	"visa-advisory-portal/internal/model"
	"visa-advisory-portal/internal/model/requestresponse"
)

type Step int

const (
	StepPersonal Step = iota
	StepAcademic
	StepWork
	StepFamily
	StepTravel
	StepGeneral
	StepConfirmation
)

// LastStep : Next on it submits the form
const LastStep = StepConfirmation

var stepTitles = [...]string{"Personales", "Académica", "Laboral", "Familiar", "Viajes", "Generales", "Confirmación"}

func (s Step) String() string {
	if s < StepPersonal || s > LastStep {
		return "Step(" + strconv.Itoa(int(s)) + ")"
	}
	return stepTitles[s]
}

// ListName : repeatable section of the form, named after its JSON field
type ListName string

const (
	ListEducation ListName = "education"
	ListWork      ListName = "work_history"
	ListTravel    ListName = "travel_history"
	ListRelatives ListName = "relatives_abroad"
	ListFamily    ListName = "family_members"
)

var (
	ErrUnknownList     = errors.New("unknown list")
	ErrIndexOutOfRange = errors.New("entry index out of range")
	ErrFamilyDisabled  = errors.New("family members are only editable for family applications")
	ErrSaveInFlight    = errors.New("form save already in progress")
)

// FormAPI : remote calls of the wizard, *apiclient.Client satisfies it
type FormAPI interface {
	MyForm(ctx context.Context) (*model.IntakeForm, error)
	SaveForm(ctx context.Context, form *model.IntakeForm) (*model.IntakeForm, error)
	Profile(ctx context.Context) (*model.Client, error)
	UpdateProfile(ctx context.Context, request requestresponse.UpdateProfileRequest) (*model.Client, error)
}

// profileUpdateTimeout : bound on the background application type update
const profileUpdateTimeout = 30 * time.Second

// Wizard : seven-step intake form. Any step can be visited at any time; only Next
// validates and saves, and Next on the last step submits.
type Wizard struct {
	api    FormAPI
	logger *zap.Logger
	now    func() time.Time

	mu            sync.Mutex
	form          model.IntakeForm
	step          Step
	completed     map[Step]bool
	errors        map[string]string
	isFamily      bool
	familyPending bool
	saving        bool
	submitted     bool

	background sync.WaitGroup
}

func NewWizard(api FormAPI, opts ...Option) *Wizard {
	o := buildOptions(opts)
	return &Wizard{
		api:       api,
		logger:    o.logger,
		now:       o.now,
		form:      blankForm(),
		completed: map[Step]bool{},
		errors:    map[string]string{},
	}
}

// Load : hydrates from the saved form. Absence and fetch failures both start fresh;
// the result reports whether prior data was found.
func (w *Wizard) Load(ctx context.Context) bool {
	form, err := w.api.MyForm(ctx)
	if err != nil {
		if !errors.Is(err, apiclient.ErrNotFound) {
			w.logger.Warn("load intake form failed, starting fresh", zap.Error(err))
		}
		w.reset(blankForm(), false)
		return false
	}

	isFamily := len(form.FamilyMembers) > 0
	if !isFamily {
		if profile, err := w.api.Profile(ctx); err != nil {
			w.logger.Debug("load profile failed", zap.Error(err))
		} else {
			isFamily = profile.ApplicationType == model.ApplicationFamily
		}
	}

	w.reset(normalizeForm(*form), isFamily)
	return true
}

func (w *Wizard) reset(form model.IntakeForm, isFamily bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = form
	w.step = StepPersonal
	w.completed = map[Step]bool{}
	w.errors = map[string]string{}
	w.isFamily = isFamily
	w.familyPending = false
	w.submitted = form.IsCompleted
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// GoToStep : clamps n to the valid range
func (w *Wizard) GoToStep(n int) Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = Step(min(max(n, int(StepPersonal)), int(LastStep)))
	return w.step
}

// Prev : never validates or saves
func (w *Wizard) Prev() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = max(w.step-1, StepPersonal)
	return w.step
}

// Next : validates the current step, saves the whole form and advances.
// On the last step the save carries is_completed=true.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	if w.saving {
		w.mu.Unlock()
		return ErrSaveInFlight
	}

	step := w.step
	final := step == LastStep
	fields := validateStep(step, &w.form, w.isFamily, w.now())
	w.errors = fields
	if len(fields) > 0 {
		w.mu.Unlock()
		return &ValidationError{Fields: maps.Clone(fields)}
	}

	payload := cloneForm(w.form)
	payload.IsCompleted = final
	w.saving = true
	w.mu.Unlock()

	saved, err := w.api.SaveForm(ctx, &payload)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.saving = false
	if err != nil {
		return &RemoteError{Op: "save form", Err: err}
	}

	if saved != nil {
		if saved.ID != "" {
			w.form.ID = saved.ID
		}
		w.form.IsCompleted = saved.IsCompleted
		w.form.CompletedAt = saved.CompletedAt
	}
	w.completed[step] = true
	if final {
		w.submitted = true
	} else {
		w.step = min(step+1, LastStep)
	}

	if w.familyPending {
		w.familyPending = false
		w.updateApplicationType(ctx, len(w.form.FamilyMembers))
	}
	return nil
}

// updateApplicationType : fire-and-forget, a failure is logged and never reaches the save
func (w *Wizard) updateApplicationType(ctx context.Context, members int) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), profileUpdateTimeout)
	applicationType := model.ApplicationFamily

	w.background.Add(1)
	go func() {
		defer w.background.Done()
		defer cancel()
		_, err := w.api.UpdateProfile(bg, requestresponse.UpdateProfileRequest{
			ApplicationType:    &applicationType,
			FamilyMembersCount: &members,
		})
		if err != nil {
			w.logger.Warn("update application type failed", zap.Error(err))
		}
	}()
}

// Wait : blocks until background profile updates finish
func (w *Wizard) Wait() {
	w.background.Wait()
}

// SetFamily : keeps every other answer. Switching on schedules a profile update for the next save.
func (w *Wizard) SetFamily(isFamily bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if isFamily && !w.isFamily {
		w.familyPending = true
	}
	if !isFamily {
		w.familyPending = false
	}
	w.isFamily = isFamily
}

func (w *Wizard) IsFamily() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isFamily
}

func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// CompletedSteps : steps advanced past, in order. Used for display only.
func (w *Wizard) CompletedSteps() []Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	steps := make([]Step, 0, len(w.completed))
	for step := range w.completed {
		steps = append(steps, step)
	}
	slices.Sort(steps)
	return steps
}

// Errors : field errors of the last Next
func (w *Wizard) Errors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.errors)
}

// Form : deep copy of the current answers
func (w *Wizard) Form() model.IntakeForm {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneForm(w.form)
}

// Update : edits the answers in place, lists included
func (w *Wizard) Update(edit func(form *model.IntakeForm)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	edit(&w.form)
}

// Append : adds a blank entry at the end of list and returns its index
func (w *Wizard) Append(list ListName) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f := &w.form
	switch list {
	case ListEducation:
		f.Education = append(f.Education, model.EducationEntry{})
		return len(f.Education) - 1, nil
	case ListWork:
		f.WorkHistory = append(f.WorkHistory, model.WorkEntry{})
		return len(f.WorkHistory) - 1, nil
	case ListTravel:
		f.TravelHistory = append(f.TravelHistory, model.TravelEntry{})
		return len(f.TravelHistory) - 1, nil
	case ListRelatives:
		f.RelativesAbroad = append(f.RelativesAbroad, model.RelativeEntry{})
		return len(f.RelativesAbroad) - 1, nil
	case ListFamily:
		if !w.isFamily {
			return -1, ErrFamilyDisabled
		}
		f.FamilyMembers = append(f.FamilyMembers, model.FamilyMember{})
		return len(f.FamilyMembers) - 1, nil
	}
	return -1, ErrUnknownList
}

// Remove : deletes entry i, keeps the order of the rest and shifts their field errors down
func (w *Wizard) Remove(list ListName, i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f := &w.form
	var err error
	switch list {
	case ListEducation:
		f.Education, err = removeAt(f.Education, i)
	case ListWork:
		f.WorkHistory, err = removeAt(f.WorkHistory, i)
	case ListTravel:
		f.TravelHistory, err = removeAt(f.TravelHistory, i)
	case ListRelatives:
		f.RelativesAbroad, err = removeAt(f.RelativesAbroad, i)
	case ListFamily:
		if !w.isFamily {
			return ErrFamilyDisabled
		}
		f.FamilyMembers, err = removeAt(f.FamilyMembers, i)
	default:
		return ErrUnknownList
	}
	if err != nil {
		return err
	}

	w.errors = reindexErrors(w.errors, list, i)
	return nil
}

// MemberIsMinor : derived from the birth date, never stored
func (w *Wizard) MemberIsMinor(i int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.form.FamilyMembers) {
		return false
	}
	return IsMinor(w.form.FamilyMembers[i].BirthDate, w.now())
}

// MemberOccupationLabel : label of the occupation field of family member i
func (w *Wizard) MemberOccupationLabel(i int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.form.FamilyMembers) {
		return labelEmployment
	}
	return OccupationLabel(w.form.FamilyMembers[i], w.now())
}

func removeAt[S ~[]E, E any](list S, i int) (S, error) {
	if i < 0 || i >= len(list) {
		return list, ErrIndexOutOfRange
	}
	return slices.Delete(slices.Clone(list), i, i+1), nil
}

func reindexErrors(fields map[string]string, list ListName, removed int) map[string]string {
	prefix := string(list) + "."
	out := make(map[string]string, len(fields))
	for key, message := range fields {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			out[key] = message
			continue
		}
		indexText, field, ok := strings.Cut(rest, ".")
		index, err := strconv.Atoi(indexText)
		if !ok || err != nil {
			out[key] = message
			continue
		}
		switch {
		case index == removed:
		case index > removed:
			out[entryKey(list, index-1, field)] = message
		default:
			out[key] = message
		}
	}
	return out
}

func blankForm() model.IntakeForm {
	return normalizeForm(model.IntakeForm{})
}

// normalizeForm : nil lists become empty so that saves always send arrays
func normalizeForm(f model.IntakeForm) model.IntakeForm {
	if f.Education == nil {
		f.Education = model.JSONList[model.EducationEntry]{}
	}
	if f.WorkHistory == nil {
		f.WorkHistory = model.JSONList[model.WorkEntry]{}
	}
	if f.TravelHistory == nil {
		f.TravelHistory = model.JSONList[model.TravelEntry]{}
	}
	if f.RelativesAbroad == nil {
		f.RelativesAbroad = model.JSONList[model.RelativeEntry]{}
	}
	if f.FamilyMembers == nil {
		f.FamilyMembers = model.JSONList[model.FamilyMember]{}
	}
	return f
}

func cloneForm(f model.IntakeForm) model.IntakeForm {
	f.Education = slices.Clone(f.Education)
	f.WorkHistory = slices.Clone(f.WorkHistory)
	f.TravelHistory = slices.Clone(f.TravelHistory)
	f.RelativesAbroad = slices.Clone(f.RelativesAbroad)
	f.FamilyMembers = slices.Clone(f.FamilyMembers)
	if f.CompletedAt != nil {
		t := *f.CompletedAt
		f.CompletedAt = &t
	}
	return normalizeForm(f)
}
