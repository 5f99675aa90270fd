package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// SessionPanel shows which participant is viewed and lets the user switch
// participants or drop one from the session.
type SessionPanel struct {
	title  *widget.Text
	status *widget.Text
	last   string
}

func NewSessionUI(g *Game) (*ebitenui.UI, *SessionPanel) {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 180})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	rowData := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionStart, Stretch: true})

	title := widget.NewText(widget.TextOpts.Text("", &face, white), widget.TextOpts.WidgetOpts(rowData))
	status := widget.NewText(widget.TextOpts.Text("", &face, white), widget.TextOpts.WidgetOpts(rowData))

	nextBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}),
		widget.ButtonOpts.Text("Next participant", &face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(rowData),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.NextView()
		}),
	)
	leaveBtn := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}),
		widget.ButtonOpts.Text("Leave / rejoin", &face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(rowData),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.ToggleConnection()
		}),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 10, Bottom: 10, Left: 12, Right: 12}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(220, 0),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionEnd, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(status)
	panel.AddChild(nextBtn)
	panel.AddChild(leaveBtn)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}, &SessionPanel{title: title, status: status}
}

// Refresh updates the labels from the viewed participant.
func (s *SessionPanel) Refresh(g *Game) {
	if s == nil {
		return
	}
	name := g.names[g.view]
	title := "Viewing " + name
	status := "not joined"
	if p, ok := g.Viewed(); ok {
		conn := "connected"
		if !p.Session.Connected() {
			conn = "left session"
		}
		owner, ok := p.GizmoOwner()
		if !ok {
			owner = "none"
		}
		status = fmt.Sprintf("%s, %d objects, gizmo: %s", conn, p.Session.Objects(), owner)
	}
	if title+status == s.last {
		return
	}
	s.last = title + status
	s.title.Label = title
	s.status.Label = status
}
