package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/damagebehaviors/container"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/milk9111/damagebehaviors/source"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"
)

// NewPreviewUI builds a panel on the right with one toggle button per
// behavior and source, so any behavior can be invoked on any source by
// hand.
func NewPreviewUI(g *Game) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 180})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnPressed := imageui.NewNineSliceColor(color.NRGBA{R: 0x66, G: 0x44, B: 0x11, A: 255})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 10, Bottom: 10, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionEnd, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	panel.AddChild(widget.NewText(
		widget.TextOpts.Text("Invoke", &face, white),
	))

	for _, c := range g.scenario.Containers() {
		actor := source.ActorName(g.scenario.World, c.Actor())
		for _, b := range c.Behaviors() {
			for _, src := range c.Sources() {
				panel.AddChild(widget.NewButton(
					widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressed}),
					widget.ButtonOpts.Text(actor+": "+b.Name()+" @ "+src.Name, &face, btnTextColor),
					widget.ButtonOpts.ClickedHandler(toggleHandler(c, b.Name(), src.Name)),
				))
			}
		}
	}

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}

// toggleHandler flips the behavior on the source's container between
// active and inactive.
func toggleHandler(c *container.Container, name, src string) func(*widget.ButtonClickedEventArgs) {
	return func(*widget.ButtonClickedEventArgs) {
		activate := true
		if target := sourceContainer(c, src); target != nil {
			if b, ok := target.Behavior(name); ok {
				activate = !b.IsActive()
			}
		}
		logger.Log.WithFields(logrus.Fields{
			"behavior": name,
			"source":   src,
			"activate": activate,
		}).Info("preview: invoke")
		c.Invoke(name, activate, []string{src}, nil)
	}
}

func sourceContainer(c *container.Container, name string) *container.Container {
	s, ok := c.Source(name)
	if !ok {
		return nil
	}
	if s.IsSelf() {
		return c
	}
	world := c.World()
	actor, ok := s.ResolveActor(world, c.Actor())
	if !ok {
		return nil
	}
	target, _ := container.Of(world, actor)
	return target
}
