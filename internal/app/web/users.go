package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/operations"
	"github.com/resonatehq/console/internal/util"
	"github.com/resonatehq/console/pkg/user"
)

// usersPage holds no form state, the posted form and the resulting message
// only live in the response to that post.
type usersPage struct {
	service UsersService
	reader  Reader
}

type usersView struct {
	Form    user.User
	Message string
	List    listView
	Users   []user.User
}

func newUsersPage(service UsersService, reader Reader) *usersPage {
	return &usersPage{
		service: service,
		reader:  reader,
	}
}

// get mounts a fresh page, every visit fetches the list.
func (p *usersPage) get(c *gin.Context) {
	p.service.FetchUsers(detach(c))
	p.render(c, http.StatusOK, usersView{})
}

func (p *usersPage) post(c *gin.Context) {
	var u user.User
	if err := c.ShouldBind(&u); err != nil {
		p.render(c, http.StatusBadRequest, usersView{Form: u, Message: util.ValidationMessage(err)})
		return
	}

	ctx := detach(c)
	if _, err := p.service.SaveUser(ctx, &u); err != nil {
		p.render(c, status(err), usersView{Form: u, Message: "Error saving user: " + client.Message(err)})
		return
	}

	p.service.FetchUsers(ctx)
	p.render(c, http.StatusOK, usersView{Form: u, Message: "User saved successfully!"})
}

func (p *usersPage) render(c *gin.Context, code int, view usersView) {
	record, ok := p.reader.Get(operations.FetchUsers)
	view.List = newListView(record, ok)

	if list, ok := record.Data.(user.List); ok && view.List.Ready {
		view.Users = list.Users
	}

	c.HTML(code, "users.html", view)
}

// detach keeps backend calls running when the browser goes away. The client
// timeout still bounds them.
func detach(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
