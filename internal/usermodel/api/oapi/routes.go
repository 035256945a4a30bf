package oapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Issue a bearer token
	// (POST /login)
	PostLogin(w http.ResponseWriter, r *http.Request)
	// List all users
	// (GET /users/users)
	ListAllUsers(w http.ResponseWriter, r *http.Request)
	// Get user by id
	// (GET /users/user/{userid})
	GetUserById(w http.ResponseWriter, r *http.Request, userid int64)
	// Find users whose name contains the fragment, 404 when none
	// (GET /users/user/name/{userName})
	GetUserByName(w http.ResponseWriter, r *http.Request, userName string)
	// Find users whose name contains the fragment
	// (GET /users/user/name/like/{userName})
	GetUserLikeName(w http.ResponseWriter, r *http.Request, userName string)
	// Create a user
	// (POST /users/user)
	AddNewUser(w http.ResponseWriter, r *http.Request)
	// Replace a user
	// (PUT /users/user/{userid})
	UpdateFullUser(w http.ResponseWriter, r *http.Request, userid int64)
	// Partially update a user
	// (PATCH /users/user/{userid})
	UpdateUser(w http.ResponseWriter, r *http.Request, userid int64)
	// Delete a user
	// (DELETE /users/user/{userid})
	DeleteUserById(w http.ResponseWriter, r *http.Request, userid int64)
	// Get the authenticated user
	// (GET /users/getcurrentuserinfo)
	GetCurrentUserInfo(w http.ResponseWriter, r *http.Request)
	// List all roles
	// (GET /roles/roles)
	ListRoles(w http.ResponseWriter, r *http.Request)
	// Get role by id
	// (GET /roles/role/{roleid})
	GetRoleById(w http.ResponseWriter, r *http.Request, roleid int64)
	// Get role by name
	// (GET /roles/role/name/{roleName})
	GetRoleByName(w http.ResponseWriter, r *http.Request, roleName string)
	// Create a role
	// (POST /roles/role)
	AddNewRole(w http.ResponseWriter, r *http.Request)
	// Rename a role
	// (PUT /roles/role/{roleid})
	PutUpdateRole(w http.ResponseWriter, r *http.Request, roleid int64)
	// Delete a role
	// (DELETE /roles/role/{roleid})
	DeleteRoleById(w http.ResponseWriter, r *http.Request, roleid int64)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// PostLogin operation middleware
func (siw *ServerInterfaceWrapper) PostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PostLogin(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// ListAllUsers operation middleware
func (siw *ServerInterfaceWrapper) ListAllUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListAllUsers(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// GetUserById operation middleware
func (siw *ServerInterfaceWrapper) GetUserById(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "userid" -------------
	var userid int64

	err = runtime.BindStyledParameterWithOptions("simple", "userid", chi.URLParam(r, "userid"), &userid, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "userid", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetUserById(w, r, userid)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// GetUserByName operation middleware
func (siw *ServerInterfaceWrapper) GetUserByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "userName" -------------
	var userName string

	err = runtime.BindStyledParameterWithOptions("simple", "userName", chi.URLParam(r, "userName"), &userName, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "userName", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetUserByName(w, r, userName)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// GetUserLikeName operation middleware
func (siw *ServerInterfaceWrapper) GetUserLikeName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "userName" -------------
	var userName string

	err = runtime.BindStyledParameterWithOptions("simple", "userName", chi.URLParam(r, "userName"), &userName, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "userName", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetUserLikeName(w, r, userName)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// AddNewUser operation middleware
func (siw *ServerInterfaceWrapper) AddNewUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.AddNewUser(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// UpdateFullUser operation middleware
func (siw *ServerInterfaceWrapper) UpdateFullUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "userid" -------------
	var userid int64

	err = runtime.BindStyledParameterWithOptions("simple", "userid", chi.URLParam(r, "userid"), &userid, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "userid", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateFullUser(w, r, userid)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// UpdateUser operation middleware
func (siw *ServerInterfaceWrapper) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "userid" -------------
	var userid int64

	err = runtime.BindStyledParameterWithOptions("simple", "userid", chi.URLParam(r, "userid"), &userid, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "userid", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateUser(w, r, userid)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// DeleteUserById operation middleware
func (siw *ServerInterfaceWrapper) DeleteUserById(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "userid" -------------
	var userid int64

	err = runtime.BindStyledParameterWithOptions("simple", "userid", chi.URLParam(r, "userid"), &userid, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "userid", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteUserById(w, r, userid)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// GetCurrentUserInfo operation middleware
func (siw *ServerInterfaceWrapper) GetCurrentUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetCurrentUserInfo(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// ListRoles operation middleware
func (siw *ServerInterfaceWrapper) ListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{"ADMIN"})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListRoles(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// GetRoleById operation middleware
func (siw *ServerInterfaceWrapper) GetRoleById(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "roleid" -------------
	var roleid int64

	err = runtime.BindStyledParameterWithOptions("simple", "roleid", chi.URLParam(r, "roleid"), &roleid, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "roleid", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{"ADMIN"})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetRoleById(w, r, roleid)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// GetRoleByName operation middleware
func (siw *ServerInterfaceWrapper) GetRoleByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "roleName" -------------
	var roleName string

	err = runtime.BindStyledParameterWithOptions("simple", "roleName", chi.URLParam(r, "roleName"), &roleName, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "roleName", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{"ADMIN"})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetRoleByName(w, r, roleName)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// AddNewRole operation middleware
func (siw *ServerInterfaceWrapper) AddNewRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{"ADMIN"})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.AddNewRole(w, r)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// PutUpdateRole operation middleware
func (siw *ServerInterfaceWrapper) PutUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "roleid" -------------
	var roleid int64

	err = runtime.BindStyledParameterWithOptions("simple", "roleid", chi.URLParam(r, "roleid"), &roleid, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "roleid", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{"ADMIN"})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PutUpdateRole(w, r, roleid)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

// DeleteRoleById operation middleware
func (siw *ServerInterfaceWrapper) DeleteRoleById(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error

	// ------------- Path parameter "roleid" -------------
	var roleid int64

	err = runtime.BindStyledParameterWithOptions("simple", "roleid", chi.URLParam(r, "roleid"), &roleid, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "roleid", Err: err})
		return
	}

	ctx = context.WithValue(ctx, BearerAuthScopes, []string{"ADMIN"})

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteRoleById(w, r, roleid)
	}))

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r.WithContext(ctx))
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/login", wrapper.PostLogin)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/users", wrapper.ListAllUsers)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/user/{userid}", wrapper.GetUserById)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/user/name/{userName}", wrapper.GetUserByName)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/user/name/like/{userName}", wrapper.GetUserLikeName)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/users/user", wrapper.AddNewUser)
	})
	r.Group(func(r chi.Router) {
		r.Put(options.BaseURL+"/users/user/{userid}", wrapper.UpdateFullUser)
	})
	r.Group(func(r chi.Router) {
		r.Patch(options.BaseURL+"/users/user/{userid}", wrapper.UpdateUser)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/users/user/{userid}", wrapper.DeleteUserById)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/getcurrentuserinfo", wrapper.GetCurrentUserInfo)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/roles/roles", wrapper.ListRoles)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/roles/role/{roleid}", wrapper.GetRoleById)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/roles/role/name/{roleName}", wrapper.GetRoleByName)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/roles/role", wrapper.AddNewRole)
	})
	r.Group(func(r chi.Router) {
		r.Put(options.BaseURL+"/roles/role/{roleid}", wrapper.PutUpdateRole)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/roles/role/{roleid}", wrapper.DeleteRoleById)
	})

	return r
}
