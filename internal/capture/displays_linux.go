//go:build linux

package capture

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
)

// ListDisplays enumerates displays via Xinerama, falling back to the
// default screen when the extension is missing or inactive.
func ListDisplays() ([]DisplayInfo, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	return listDisplays(conn, screen)
}

func listDisplays(conn *xgb.Conn, screen *xproto.ScreenInfo) ([]DisplayInfo, error) {
	if err := xinerama.Init(conn); err == nil {
		if active, err := xinerama.IsActive(conn).Reply(); err == nil && active.State != 0 {
			reply, err := xinerama.QueryScreens(conn).Reply()
			if err == nil && len(reply.ScreenInfo) > 0 {
				displays := make([]DisplayInfo, 0, len(reply.ScreenInfo))
				for i, si := range reply.ScreenInfo {
					displays = append(displays, DisplayInfo{
						Index:   i,
						Name:    fmt.Sprintf("xinerama-%d", i),
						X:       int(si.XOrg),
						Y:       int(si.YOrg),
						Width:   int(si.Width),
						Height:  int(si.Height),
						Primary: i == 0,
					})
				}
				return displays, nil
			}
		}
	}

	return []DisplayInfo{{
		Index:   0,
		Name:    "default",
		Width:   int(screen.WidthInPixels),
		Height:  int(screen.HeightInPixels),
		Primary: true,
	}}, nil
}
