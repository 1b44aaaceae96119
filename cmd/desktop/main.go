package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
	"github.com/MihkelHunter/mkAgenda/internal/host"
)

// ── Colour palette ───────────────────────────────────────────────────────────

var (
	colBackground = color.NRGBA{R: 15, G: 15, B: 20, A: 255}
	colSurface    = color.NRGBA{R: 26, G: 26, B: 36, A: 255}
	colAccent     = color.NRGBA{R: 99, G: 102, B: 241, A: 255}
	colHighPri    = color.NRGBA{R: 239, G: 68, B: 68, A: 255}
	colMedPri     = color.NRGBA{R: 245, G: 158, B: 11, A: 255}
	colLowPri     = color.NRGBA{R: 100, G: 116, B: 139, A: 255}
)

// ── App state ────────────────────────────────────────────────────────────────

type appState struct {
	svc    *agenda.Service
	window time.Duration
	app    fyne.App
	win    fyne.Window

	taskList   *widget.List
	linkList   *widget.List
	statsLabel *widget.Label
	tasks      []*agenda.Task
	links      []*agenda.Link

	strategy      agenda.Strategy
	showCompleted bool
}

// desktopNotifier raises an OS notification through fyne.
type desktopNotifier struct {
	app fyne.App
}

func (n desktopNotifier) Send(_ context.Context, title, body string) error {
	n.app.SendNotification(fyne.NewNotification(title, body))
	return nil
}

func main() {
	configPath := flag.String("config", "", "config file (default ~/.mkagenda/config.yaml)")
	flag.Parse()

	a := app.NewWithID("io.github.mihkelhunter.mkagenda")
	a.Settings().SetTheme(&darkTheme{})

	h, err := host.Open(context.Background(), *configPath, desktopNotifier{app: a}, log.Default())
	if err != nil {
		log.Fatalf("agenda: %v", err)
	}
	defer h.Close()

	win := a.NewWindow("mkAgenda")
	win.Resize(fyne.NewSize(820, 640))
	win.CenterOnScreen()

	s := &appState{
		svc:      h.Service,
		window:   h.Config.Window(),
		app:      a,
		win:      win,
		strategy: h.Strategy(),
	}
	win.SetContent(s.buildUI())
	s.refresh()

	win.ShowAndRun()
}

// ── Build UI ─────────────────────────────────────────────────────────────────

func (s *appState) buildUI() fyne.CanvasObject {
	title := canvas.NewText("  📆  mkAgenda", color.White)
	title.TextSize = 20
	title.TextStyle = fyne.TextStyle{Bold: true}

	header := container.NewBorder(nil, nil, title, nil)
	headerBG := canvas.NewRectangle(colSurface)
	headerStack := container.NewStack(headerBG, container.NewPadded(header))

	tabs := container.NewAppTabs(
		container.NewTabItem("Agenda", s.buildAgendaTab()),
		container.NewTabItem("Links", s.buildLinksTab()),
		container.NewTabItem("Reminders", s.buildRemindersTab()),
	)

	s.statsLabel = widget.NewLabel("")
	footerBG := canvas.NewRectangle(colSurface)
	footerStack := container.NewStack(footerBG, container.NewPadded(container.NewCenter(s.statsLabel)))

	bg := canvas.NewRectangle(colBackground)
	ui := container.NewBorder(headerStack, footerStack, nil, nil, tabs)
	return container.NewStack(bg, ui)
}

func (s *appState) buildAgendaTab() fyne.CanvasObject {
	addBtn := widget.NewButton("+ Add Task", func() { s.showTaskForm(nil) })
	addBtn.Importance = widget.HighImportance

	sortSelect := widget.NewSelect([]string{"Manual order", "Priority"}, nil)
	if s.strategy == agenda.PriorityFirst {
		sortSelect.SetSelected("Priority")
	} else {
		sortSelect.SetSelected("Manual order")
	}
	// attached after the initial selection; the list does not exist yet
	sortSelect.OnChanged = func(sel string) {
		if sel == "Priority" {
			s.strategy = agenda.PriorityFirst
		} else {
			s.strategy = agenda.Manual
		}
		s.refresh()
	}

	completedCheck := widget.NewCheck("Show completed", func(on bool) {
		s.showCompleted = on
		s.refresh()
	})

	toolbar := container.NewHBox(addBtn, layout.NewSpacer(), sortSelect, completedCheck)

	s.taskList = widget.NewList(
		func() int { return len(s.tasks) },
		s.makeTaskRow,
		s.updateTaskRow,
	)
	s.taskList.OnSelected = func(id widget.ListItemID) { s.taskList.Unselect(id) }

	return container.NewBorder(container.NewPadded(toolbar), nil, nil, nil, s.taskList)
}

func (s *appState) buildLinksTab() fyne.CanvasObject {
	addBtn := widget.NewButton("+ Add Link", func() { s.showLinkForm(nil) })
	addBtn.Importance = widget.HighImportance

	s.linkList = widget.NewList(
		func() int { return len(s.links) },
		s.makeLinkRow,
		s.updateLinkRow,
	)
	s.linkList.OnSelected = func(id widget.ListItemID) { s.linkList.Unselect(id) }

	return container.NewBorder(container.NewPadded(container.NewHBox(addBtn)), nil, nil, nil, s.linkList)
}

func (s *appState) buildRemindersTab() fyne.CanvasObject {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(strconv.Itoa(int(s.window / time.Minute)))

	result := widget.NewLabel("Reminders are only checked when you ask.")
	result.Wrapping = fyne.TextWrapWord

	checkBtn := widget.NewButton("Check reminders now", func() {
		n, err := strconv.Atoi(strings.TrimSpace(windowEntry.Text))
		if err != nil || n < 1 || n > 24*60 {
			dialog.ShowError(fmt.Errorf("window must be between 1 and 1440 minutes"), s.win)
			return
		}
		fired, err := s.svc.CheckReminders(context.Background(), time.Duration(n)*time.Minute)
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		result.SetText(describeFired(fired))
		s.refresh()
	})
	checkBtn.Importance = widget.HighImportance

	form := widget.NewForm(widget.NewFormItem("Window (minutes)", windowEntry))
	return container.NewVBox(form, checkBtn, result)
}

func describeFired(fired []agenda.NotificationEvent) string {
	if len(fired) == 0 {
		return "No tasks to notify in this window."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d reminder(s) sent:\n", len(fired))
	for _, ev := range fired {
		fmt.Fprintf(&b, "• %s - %s - %s\n", ev.Title, ev.Due.Format("2006-01-02 15:04"), ev.Priority)
	}
	return b.String()
}

// ── Task row template ─────────────────────────────────────────────────────────

func (s *appState) makeTaskRow() fyne.CanvasObject {
	priDot := canvas.NewCircle(colLowPri)
	priDot.Resize(fyne.NewSize(12, 12))

	checkBtn := widget.NewButtonWithIcon("", theme.RadioButtonIcon(), func() {})
	checkBtn.Importance = widget.LowImportance

	titleLabel := widget.NewLabel("title")
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	descLabel := widget.NewLabel("desc")

	upBtn := widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() {})
	upBtn.Importance = widget.LowImportance
	downBtn := widget.NewButtonWithIcon("", theme.MoveDownIcon(), func() {})
	downBtn.Importance = widget.LowImportance

	folderBtn := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {})
	folderBtn.Importance = widget.LowImportance

	editBtn := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {})
	editBtn.Importance = widget.LowImportance

	deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {})
	deleteBtn.Importance = widget.DangerImportance

	left := container.NewHBox(
		container.NewCenter(priDot),
		checkBtn,
		container.NewVBox(titleLabel, descLabel),
	)
	right := container.NewHBox(upBtn, downBtn, folderBtn, editBtn, deleteBtn)
	rowContent := container.NewBorder(nil, nil, left, right)

	rowBG := canvas.NewRectangle(colSurface)
	rowBG.CornerRadius = 8

	return container.NewStack(rowBG, container.NewPadded(rowContent))
}

func (s *appState) updateTaskRow(i widget.ListItemID, obj fyne.CanvasObject) {
	if i >= len(s.tasks) {
		return
	}
	t := s.tasks[i]

	stack := obj.(*fyne.Container)
	rowBG := stack.Objects[0].(*canvas.Rectangle)
	padded := stack.Objects[1].(*fyne.Container)
	border := padded.Objects[0].(*fyne.Container)

	// container.NewBorder keeps only the non-nil children, in the order
	// top, bottom, left, right, center: here 0=left, 1=right.
	left := border.Objects[0].(*fyne.Container)
	right := border.Objects[1].(*fyne.Container)

	priDotBox := left.Objects[0].(*fyne.Container)
	priDot := priDotBox.Objects[0].(*canvas.Circle)
	checkBtn := left.Objects[1].(*widget.Button)
	textBox := left.Objects[2].(*fyne.Container)
	titleLabel := textBox.Objects[0].(*widget.Label)
	descLabel := textBox.Objects[1].(*widget.Label)

	upBtn := right.Objects[0].(*widget.Button)
	downBtn := right.Objects[1].(*widget.Button)
	folderBtn := right.Objects[2].(*widget.Button)
	editBtn := right.Objects[3].(*widget.Button)
	deleteBtn := right.Objects[4].(*widget.Button)

	switch t.Priority.Level() {
	case agenda.PriorityHigh:
		priDot.FillColor = colHighPri
	case agenda.PriorityMedium:
		priDot.FillColor = colMedPri
	default:
		priDot.FillColor = colLowPri
	}
	priDot.Refresh()

	if t.Completed {
		checkBtn.SetIcon(theme.ConfirmIcon())
		titleLabel.TextStyle = fyne.TextStyle{Italic: true}
		rowBG.FillColor = color.NRGBA{R: 20, G: 30, B: 25, A: 255}
	} else {
		checkBtn.SetIcon(theme.RadioButtonIcon())
		titleLabel.TextStyle = fyne.TextStyle{Bold: true}
		rowBG.FillColor = colSurface
	}
	rowBG.Refresh()

	titleLabel.SetText(t.Title)
	descLabel.SetText(taskCaption(t))

	// Moving only makes sense against the manual order.
	if s.strategy == agenda.Manual {
		upBtn.Show()
		downBtn.Show()
	} else {
		upBtn.Hide()
		downBtn.Hide()
	}
	if t.Folder != "" {
		folderBtn.Show()
	} else {
		folderBtn.Hide()
	}

	task := t
	checkBtn.OnTapped = func() { s.toggleTask(task) }
	upBtn.OnTapped = func() { s.moveTask(task, s.svc.MoveUp) }
	downBtn.OnTapped = func() { s.moveTask(task, s.svc.MoveDown) }
	folderBtn.OnTapped = func() { s.openFolder(task.Folder) }
	editBtn.OnTapped = func() { s.showTaskForm(task) }
	deleteBtn.OnTapped = func() { s.confirmDelete(task) }
}

func taskCaption(t *agenda.Task) string {
	due := "?"
	if t.HasDue() {
		due = t.Due.Format("2006-01-02 15:04")
	}
	notified := t.Notified.String()
	if notified == "" {
		notified = "-"
	}
	caption := fmt.Sprintf("Due %s · %s · %s priority · notified %s", due, t.Recurrence, t.Priority, notified)
	if t.Description != "" {
		caption = t.Description + "\n" + caption
	}
	return caption
}

// ── Link row template ─────────────────────────────────────────────────────────

func (s *appState) makeLinkRow() fyne.CanvasObject {
	nameLabel := widget.NewLabel("name")
	nameLabel.TextStyle = fyne.TextStyle{Bold: true}
	urlLabel := widget.NewLabel("url")

	openBtn := widget.NewButtonWithIcon("", theme.ComputerIcon(), func() {})
	openBtn.Importance = widget.LowImportance
	folderBtn := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {})
	folderBtn.Importance = widget.LowImportance
	editBtn := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {})
	editBtn.Importance = widget.LowImportance
	deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {})
	deleteBtn.Importance = widget.DangerImportance

	left := container.NewVBox(nameLabel, urlLabel)
	right := container.NewHBox(openBtn, folderBtn, editBtn, deleteBtn)
	rowBG := canvas.NewRectangle(colSurface)
	rowBG.CornerRadius = 8
	return container.NewStack(rowBG, container.NewPadded(container.NewBorder(nil, nil, left, right)))
}

func (s *appState) updateLinkRow(i widget.ListItemID, obj fyne.CanvasObject) {
	if i >= len(s.links) {
		return
	}
	l := s.links[i]

	stack := obj.(*fyne.Container)
	border := stack.Objects[1].(*fyne.Container).Objects[0].(*fyne.Container)
	left := border.Objects[0].(*fyne.Container)
	right := border.Objects[1].(*fyne.Container)

	left.Objects[0].(*widget.Label).SetText(l.Name)
	text := l.URL
	if l.Folder != "" {
		text += "\nFolder: " + l.Folder
	}
	left.Objects[1].(*widget.Label).SetText(text)

	openBtn := right.Objects[0].(*widget.Button)
	folderBtn := right.Objects[1].(*widget.Button)
	editBtn := right.Objects[2].(*widget.Button)
	deleteBtn := right.Objects[3].(*widget.Button)

	if l.Folder != "" {
		folderBtn.Show()
	} else {
		folderBtn.Hide()
	}

	link := l
	openBtn.OnTapped = func() { s.openURL(link.URL) }
	folderBtn.OnTapped = func() { s.openFolder(link.Folder) }
	editBtn.OnTapped = func() { s.showLinkForm(link) }
	deleteBtn.OnTapped = func() { s.confirmDeleteLink(link) }
}

// ── Actions ───────────────────────────────────────────────────────────────────

func (s *appState) refresh() {
	ctx := context.Background()
	all, err := s.svc.Tasks(ctx, s.strategy, true)
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	s.tasks = s.tasks[:0]
	done := 0
	for _, t := range all {
		if t.Completed {
			done++
			if !s.showCompleted {
				continue
			}
		}
		s.tasks = append(s.tasks, t)
	}
	s.taskList.Refresh()

	links, err := s.svc.Links(ctx)
	if err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	s.links = links
	s.linkList.Refresh()

	s.statsLabel.SetText(fmt.Sprintf("%d / %d completed · %d links", done, len(all), len(links)))
}

func (s *appState) toggleTask(t *agenda.Task) {
	if _, err := s.svc.ToggleCompleted(context.Background(), t.ID); err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	s.refresh()
}

func (s *appState) moveTask(t *agenda.Task, move func(context.Context, int64) (bool, error)) {
	if _, err := move(context.Background(), t.ID); err != nil {
		dialog.ShowError(err, s.win)
		return
	}
	s.refresh()
}

func (s *appState) openFolder(path string) {
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	if err := s.app.OpenURL(u); err != nil {
		dialog.ShowError(fmt.Errorf("could not open folder: %w", err), s.win)
	}
}

func (s *appState) openURL(raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		dialog.ShowError(fmt.Errorf("could not open URL: %w", err), s.win)
		return
	}
	if err := s.app.OpenURL(u); err != nil {
		dialog.ShowError(fmt.Errorf("could not open URL: %w", err), s.win)
	}
}

func (s *appState) confirmDelete(t *agenda.Task) {
	dialog.ShowConfirm("Delete Task",
		fmt.Sprintf("Delete \"%s\"?", t.Title),
		func(ok bool) {
			if ok {
				if err := s.svc.DeleteTask(context.Background(), t.ID); err != nil {
					dialog.ShowError(err, s.win)
					return
				}
				s.refresh()
			}
		}, s.win)
}

func (s *appState) confirmDeleteLink(l *agenda.Link) {
	dialog.ShowConfirm("Delete Link",
		fmt.Sprintf("Delete \"%s\"?", l.Name),
		func(ok bool) {
			if ok {
				if err := s.svc.DeleteLink(context.Background(), l.ID); err != nil {
					dialog.ShowError(err, s.win)
					return
				}
				s.refresh()
			}
		}, s.win)
}

func (s *appState) showTaskForm(existing *agenda.Task) {
	titleEntry := widget.NewEntry()
	titleEntry.SetPlaceHolder("Task title…")

	descEntry := widget.NewMultiLineEntry()
	descEntry.SetPlaceHolder("Optional description…")
	descEntry.SetMinRowsVisible(3)

	now := s.svc.Now()
	dateEntry := widget.NewEntry()
	dateEntry.SetPlaceHolder("YYYY-MM-DD")
	dateEntry.SetText(now.Format("2006-01-02"))
	timeEntry := widget.NewEntry()
	timeEntry.SetPlaceHolder("HH:MM")
	timeEntry.SetText(now.Format("15:04"))

	recurrenceSelect := widget.NewSelect([]string{string(agenda.Once), string(agenda.Daily)}, nil)
	recurrenceSelect.SetSelected(string(agenda.Once))

	prioritySelect := widget.NewSelect([]string{"Low", "Medium", "High"}, nil)
	prioritySelect.SetSelected("Medium")

	folderEntry := widget.NewEntry()
	folderEntry.SetPlaceHolder("Related folder (optional)")

	if existing != nil {
		titleEntry.SetText(existing.Title)
		descEntry.SetText(existing.Description)
		if existing.HasDue() {
			dateEntry.SetText(existing.Due.Format("2006-01-02"))
			timeEntry.SetText(existing.Due.Format("15:04"))
		}
		recurrenceSelect.SetSelected(string(existing.Recurrence))
		prioritySelect.SetSelected(existing.Priority.String())
		folderEntry.SetText(existing.Folder)
	}

	form := widget.NewForm(
		widget.NewFormItem("Title *", titleEntry),
		widget.NewFormItem("Description", descEntry),
		widget.NewFormItem("Date *", dateEntry),
		widget.NewFormItem("Time *", timeEntry),
		widget.NewFormItem("Recurrence", recurrenceSelect),
		widget.NewFormItem("Priority", prioritySelect),
		widget.NewFormItem("Folder", folderEntry),
	)

	label := "Add Task"
	if existing != nil {
		label = "Edit Task"
	}

	dialog.ShowCustomConfirm(label, "Save", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		due, parsed := agenda.ParseDueFields(dateEntry.Text, timeEntry.Text)
		if !parsed {
			dialog.ShowError(fmt.Errorf("date and time must look like 2024-03-01 and 18:00"), s.win)
			return
		}
		in := agenda.TaskInput{
			Title:       titleEntry.Text,
			Description: descEntry.Text,
			Due:         due,
			Recurrence:  agenda.Recurrence(recurrenceSelect.Selected),
			Folder:      folderEntry.Text,
			Priority:    agenda.ParsePriority(prioritySelect.Selected),
		}
		var err error
		if existing == nil {
			_, err = s.svc.AddTask(context.Background(), in)
		} else {
			_, err = s.svc.EditTask(context.Background(), existing.ID, in)
		}
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		s.refresh()
	}, s.win)
}

func (s *appState) showLinkForm(existing *agenda.Link) {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Link name")
	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://…")
	folderEntry := widget.NewEntry()
	folderEntry.SetPlaceHolder("Related folder (optional)")

	if existing != nil {
		nameEntry.SetText(existing.Name)
		urlEntry.SetText(existing.URL)
		folderEntry.SetText(existing.Folder)
	}

	form := widget.NewForm(
		widget.NewFormItem("Name *", nameEntry),
		widget.NewFormItem("URL *", urlEntry),
		widget.NewFormItem("Folder", folderEntry),
	)

	label := "Add Link"
	if existing != nil {
		label = "Edit Link"
	}

	dialog.ShowCustomConfirm(label, "Save", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		var (
			l   *agenda.Link
			err error
		)
		if existing == nil {
			l, err = s.svc.AddLink(context.Background(), nameEntry.Text, urlEntry.Text, folderEntry.Text)
		} else {
			l, err = s.svc.EditLink(context.Background(), existing.ID, nameEntry.Text, urlEntry.Text, folderEntry.Text)
		}
		if err != nil {
			dialog.ShowError(err, s.win)
			return
		}
		if !agenda.ValidURL(l.URL) {
			dialog.ShowInformation("Link saved", "The URL does not look valid, but it was saved.", s.win)
		}
		s.refresh()
	}, s.win)
}

// ── Custom dark theme ─────────────────────────────────────────────────────────

type darkTheme struct{}

func (darkTheme) Color(n fyne.ThemeColorName, v fyne.ThemeVariant) color.Color {
	switch n {
	case theme.ColorNameBackground:
		return colBackground
	case theme.ColorNameButton:
		return colAccent
	case theme.ColorNamePrimary:
		return colAccent
	case theme.ColorNameForeground:
		return color.White
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 35, G: 35, B: 50, A: 255}
	case theme.ColorNameDisabled:
		return color.NRGBA{R: 80, G: 80, B: 100, A: 255}
	case theme.ColorNameSeparator:
		return color.NRGBA{R: 50, G: 50, B: 65, A: 255}
	}
	return theme.DefaultTheme().Color(n, v)
}

func (darkTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (darkTheme) Icon(n fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(n)
}

func (darkTheme) Size(n fyne.ThemeSizeName) float32 {
	switch n {
	case theme.SizeNamePadding:
		return 10
	case theme.SizeNameText:
		return 14
	case theme.SizeNameInlineIcon:
		return 20
	}
	return theme.DefaultTheme().Size(n)
}
