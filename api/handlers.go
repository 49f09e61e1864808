package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"media-gallery/compiler"
	"media-gallery/formats"
	"media-gallery/locale"
	"media-gallery/modal"
	"media-gallery/session"
)

// healthCheck verifica lo stato del server
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   s.version,
		"screen":    s.session.Screen(),
		"resources": len(s.session.Content().Resources),
		"loaded_at": s.session.LoadedAt(),
		"displays":  s.hub.Len(),
	})
}

// getContent restituisce l'aggregato grezzo
func (s *Server) getContent(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Content())
}

// getView restituisce le schede; ?lang= non cambia la lingua salvata
func (s *Server) getView(c *gin.Context) {
	if raw := c.Query("lang"); raw != "" {
		lang, err := locale.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, s.session.ViewIn(lang))
		return
	}
	c.JSON(http.StatusOK, s.session.View())
}

// reload scarica di nuovo il manifest
func (s *Server) reload(c *gin.Context) {
	err := s.session.Load(c.Request.Context())
	s.respondWithView(c, err)
}

// respondWithView risponde con la vista corrente; un errore di caricamento
// non è fatale: la vista è quella vuota.
func (s *Server) respondWithView(c *gin.Context, loadErr error) {
	body := gin.H{
		"success": loadErr == nil,
		"screen":  s.session.Screen(),
		"view":    s.session.View(),
	}
	if loadErr != nil {
		body["error"] = loadErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

// getPreload restituisce l'ultimo report di precaricamento
func (s *Server) getPreload(c *gin.Context) {
	report := s.session.Report()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "nessun precaricamento eseguito"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":  report,
		"summary": report.String(),
	})
}

// getDialects elenca i dialetti di manifest registrati
func (s *Server) getDialects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"dialects": formats.GetAvailableFormats(),
	})
}

func (s *Server) getLanguage(c *gin.Context) {
	lang, chosen := s.session.Language()
	c.JSON(http.StatusOK, gin.H{
		"language": lang,
		"chosen":   chosen,
		"badge":    lang.Badge(),
	})
}

// SetLanguageRequest richiesta di scelta lingua
type SetLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// setLanguage salva la lingua e carica il contenuto
func (s *Server) setLanguage(c *gin.Context) {
	var req SetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lang, err := locale.Parse(req.Language)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.session.SelectLanguage(c.Request.Context(), lang); err != nil {
		if _, chosen := s.session.Language(); !chosen {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		s.respondWithView(c, err)
		return
	}
	s.respondWithView(c, nil)
}

// toggleLanguage passa all'altra lingua senza ricaricare
func (s *Server) toggleLanguage(c *gin.Context) {
	lang, err := s.session.ToggleLanguage(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"language": lang,
		"view":     s.session.View(),
	})
}

func (s *Server) getModal(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Stage().Snapshot())
}

// closeModal chiude la modale video condivisa
func (s *Server) closeModal(c *gin.Context) {
	s.session.Stage().CloseVideo()
	c.JSON(http.StatusOK, s.session.Stage().Snapshot())
}

// activateCard attiva la prima scheda con l'ordine indicato
func (s *Server) activateCard(c *gin.Context) {
	order, err := strconv.Atoi(c.Param("order"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ordine non numerico"})
		return
	}

	overlayID, err := s.session.ActivateCard(order)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrCardNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"overlay_id": overlayID,
		"modal":      s.session.Stage().Snapshot(),
	})
}

// DismissRequest richiesta di chiusura anteprima
type DismissRequest struct {
	Via string `json:"via"`
}

func (s *Server) dismissOverlay(c *gin.Context) {
	req := DismissRequest{Via: string(modal.DismissClose)}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	via, err := modal.ParseDismissVia(req.Via)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.session.Stage().Dismiss(c.Param("id"), via); err != nil {
		if errors.Is(err, modal.ErrOverlayNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.session.Stage().Snapshot())
}

// KeyRequest tasto premuto su un display
type KeyRequest struct {
	Key string `json:"key" binding:"required"`
}

func (s *Server) pressKey(c *gin.Context) {
	var req KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.Stage().PressKey(req.Key)
	c.JSON(http.StatusOK, s.session.Stage().Snapshot())
}

// getWatcherStatus ottiene lo stato del watcher
func (s *Server) getWatcherStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running": s.watcher != nil && s.watcher.IsRunning(),
	})
}

// index mostra la galleria, o la scelta lingua se non è ancora stata fatta.
// ?lang= sceglie (o cambia) la lingua e reindirizza a /.
func (s *Server) index(c *gin.Context) {
	if raw := c.Query("lang"); raw != "" {
		lang, err := locale.Parse(raw)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		ctx := c.Request.Context()
		logger := log.FromContext(ctx).WithPrefix("api")
		current, chosen := s.session.Language()
		switch {
		case !chosen:
			if err := s.session.SelectLanguage(ctx, lang); err != nil {
				logger.Warn("scelta lingua non riuscita", "lang", lang, "err", err)
			}
		case current != lang:
			if _, err := s.session.ToggleLanguage(ctx); err != nil {
				logger.Warn("cambio lingua non riuscito", "lang", lang, "err", err)
			}
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	if _, chosen := s.session.Language(); !chosen {
		catalog := s.session.Catalog()
		c.HTML(http.StatusOK, compiler.LanguageTemplate, compiler.LanguagePageData{
			Title: catalog.Text(locale.Default, "website_title"),
			Choices: compiler.LanguageChoices(catalog, func(l locale.Language) string {
				return "/?lang=" + l.String()
			}),
			Live: true,
		})
		return
	}

	view := s.session.View()
	c.HTML(http.StatusOK, compiler.GalleryTemplate, compiler.PageData{
		View:      view,
		Other:     view.Language.Toggle(),
		OtherHref: "/?lang=" + view.Language.Toggle().String(),
		MediaBase: s.mediaPrefix,
		Live:      true,
	})
}

// handleWebSocket collega un display
func (s *Server) handleWebSocket(c *gin.Context) {
	s.hub.Serve(c.Writer, c.Request)
}
