package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/operations"
	"github.com/resonatehq/console/internal/util"
	"github.com/resonatehq/console/pkg/state"
)

type statesPage struct {
	service StatesService
	reader  Reader
}

type statesView struct {
	Form    state.State
	Message string
	List    listView
	States  []state.State
}

func newStatesPage(service StatesService, reader Reader) *statesPage {
	return &statesPage{
		service: service,
		reader:  reader,
	}
}

func (p *statesPage) get(c *gin.Context) {
	p.service.FetchStates(detach(c))
	p.render(c, http.StatusOK, statesView{Form: *state.New()})
}

func (p *statesPage) post(c *gin.Context) {
	s := state.New()
	if err := c.ShouldBind(s); err != nil {
		p.render(c, http.StatusBadRequest, statesView{Form: *s, Message: util.ValidationMessage(err)})
		return
	}

	ctx := detach(c)
	if _, err := p.service.SaveState(ctx, s); err != nil {
		p.render(c, status(err), statesView{Form: *s, Message: "Error saving state: " + client.Message(err)})
		return
	}

	p.service.FetchStates(ctx)
	p.render(c, http.StatusOK, statesView{Form: *s, Message: "State saved successfully!"})
}

func (p *statesPage) render(c *gin.Context, code int, view statesView) {
	record, ok := p.reader.Get(operations.FetchStates)
	view.List = newListView(record, ok)

	if states, ok := record.Data.([]state.State); ok && view.List.Ready {
		view.States = states
	}

	c.HTML(code, "states.html", view)
}
