package zentest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/labstack/echo/v4"
)

var conflictMarkers = map[string]string{
	"stacks":     "StackExistsError",
	"components": "StackComponentExistsError",
}

func collection(path string) string {
	return strings.TrimPrefix(path, "/")
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler
	e.Use(s.countHits)

	e.POST(constants.LoginPath, s.login)
	e.GET(constants.InfoPath, s.info)

	v1 := e.Group(constants.DefaultAPIVersion, s.requireToken)

	for _, path := range []string{
		constants.PathStacks,
		constants.PathComponents,
		constants.PathFlavors,
		constants.PathProjects,
		constants.PathUsers,
		constants.PathTeams,
		constants.PathRoles,
		constants.PathRoleAssignments,
		constants.PathRepositories,
		constants.PathPipelines,
		constants.PathRuns,
		constants.PathSteps,
		constants.PathArtifacts,
	} {
		name := collection(path)

		v1.GET(path, s.list(name, nil))
		v1.POST(path, s.create(name, nil))
		v1.GET(path+"/:id", s.get(name))
		v1.PUT(path+"/:id", s.update(name))
		v1.DELETE(path+"/:id", s.remove(name))
	}

	v1.GET(constants.PathComponentTypes, s.componentTypes)

	project := constants.PathProjects + "/:id"
	v1.GET(project+constants.SegmentDefaultStack, s.getDefaultStack)
	v1.PUT(project+constants.SegmentDefaultStack+"/:stack", s.setDefaultStack)
	v1.GET(project+constants.PathRepositories, s.projectRepositories)
	v1.POST(project+constants.PathRepositories, s.createProjectRepository)

	user := constants.PathUsers + "/:id"
	v1.PUT(user+constants.SegmentInviteToken, s.issueInviteToken)
	v1.DELETE(user+constants.SegmentInviteToken, s.invalidateInviteToken)
	v1.GET(user+constants.PathTeams, s.teamsOfUser)

	team := constants.PathTeams + "/:id"
	v1.GET(team+constants.PathUsers, s.membersOfTeam)
	v1.PUT(team+constants.PathUsers+"/:user", s.addMember)
	v1.DELETE(team+constants.PathUsers+"/:user", s.removeMember)

	v1.DELETE(constants.PathRoleAssignments, s.revokeRole)

	v1.GET(constants.PathPipelines+"/:id"+constants.SegmentConfiguration, s.field("pipelines", "configuration"))

	run := constants.PathRuns + "/:id"
	v1.GET(run+constants.SegmentGraph, s.runGraph)
	v1.GET(run+constants.SegmentRuntimeConfig, s.field("runs", "runtime_configuration"))
	v1.GET(run+constants.SegmentSideEffects, s.sideEffects)
	v1.GET(run+constants.PathSteps, s.stepsOfRun)

	step := constants.PathSteps + "/:id"
	v1.GET(step+constants.SegmentInputs, s.stepInputs)
	v1.GET(step+constants.SegmentOutputs, s.stepOutputs)
	v1.GET(step+constants.SegmentStatus, s.stepStatus)

	return e
}

// matchQuery accepts records whose fields equal every query parameter.
func matchQuery(query url.Values) func(map[string]interface{}) bool {
	return func(data map[string]interface{}) bool {
		for key := range query {
			want := query.Get(key)

			if key == "unlisted" {
				if (data["pipeline_id"] == nil) != (want == "true") {
					return false
				}

				continue
			}

			if valueString(data[key]) != want {
				return false
			}
		}

		return true
	}
}

func (s *Server) list(name string, scope map[string]interface{}) echo.HandlerFunc {
	return func(c echo.Context) error {
		query := c.QueryParams()
		for key, value := range scope {
			query.Set(key, valueString(value))
		}

		items, err := s.store.list(name, matchQuery(query))
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, items)
	}
}

func (s *Server) get(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		item, err := s.store.get(name, c.Param("id"))
		if err != nil {
			return storeError(c, name, c.Param("id"), err)
		}

		return c.JSON(http.StatusOK, item)
	}
}

func (s *Server) create(name string, overrides map[string]interface{}) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, ok := decodeBody(c)
		if !ok {
			return detail(c, http.StatusUnprocessableEntity, "ValidationError", "request body must be a JSON object")
		}

		for key, value := range overrides {
			body[key] = value
		}

		item, err := s.store.create(name, body)
		if err != nil {
			return storeError(c, name, "", err)
		}

		return c.JSON(http.StatusOK, item)
	}
}

func decodeBody(c echo.Context) (map[string]interface{}, bool) {
	var body map[string]interface{}

	err := json.NewDecoder(c.Request().Body).Decode(&body)

	return body, err == nil && body != nil
}

func (s *Server) update(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, ok := decodeBody(c)
		if !ok {
			return detail(c, http.StatusUnprocessableEntity, "ValidationError", "request body must be a JSON object")
		}

		item, err := s.store.update(name, c.Param("id"), body)
		if err != nil {
			return storeError(c, name, c.Param("id"), err)
		}

		return c.JSON(http.StatusOK, item)
	}
}

func (s *Server) remove(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := s.store.delete(name, c.Param("id"))
		if err != nil {
			return storeError(c, name, c.Param("id"), err)
		}

		return c.JSON(http.StatusOK, nil)
	}
}

// field answers a single field of a stored record, or an empty object.
func (s *Server) field(name, key string) echo.HandlerFunc {
	return func(c echo.Context) error {
		item, err := s.store.get(name, c.Param("id"))
		if err != nil {
			return storeError(c, name, c.Param("id"), err)
		}

		value, ok := item[key]
		if !ok || value == nil {
			value = map[string]interface{}{}
		}

		return c.JSON(http.StatusOK, value)
	}
}

func storeError(c echo.Context, name, id string, err error) error {
	var conflict *conflictError

	switch {
	case errors.As(err, &conflict):
		marker, ok := conflictMarkers[name]
		if !ok {
			marker = "EntityExistsError"
		}

		return detail(c, http.StatusConflict, marker, conflict.Error())
	case errors.Is(err, errRecordNotFound):
		return detail(c, http.StatusNotFound, "KeyError", "Unable to find "+name+" with id '"+id+"'")
	default:
		return err
	}
}

func (s *Server) componentTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, zen.ComponentTypes())
}

func (s *Server) getDefaultStack(c echo.Context) error {
	project := c.Param("id")

	_, err := s.store.get("projects", project)
	if err != nil {
		return storeError(c, "projects", project, err)
	}

	ref, err := s.store.get(collDefaultStacks, project)
	if err != nil {
		return detail(c, http.StatusNotFound, "DoesNotExistException", "No default stack configured for project '"+project+"'")
	}

	stackID := valueString(ref["stack_id"])

	stack, err := s.store.get("stacks", stackID)
	if err != nil {
		return storeError(c, "stacks", stackID, err)
	}

	return c.JSON(http.StatusOK, stack)
}

func (s *Server) setDefaultStack(c echo.Context) error {
	project, stackID := c.Param("id"), c.Param("stack")

	_, err := s.store.get("projects", project)
	if err != nil {
		return storeError(c, "projects", project, err)
	}

	stack, err := s.store.get("stacks", stackID)
	if err != nil {
		return storeError(c, "stacks", stackID, err)
	}

	err = s.store.put(collDefaultStacks, project, map[string]interface{}{"stack_id": stackID})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stack)
}

func (s *Server) projectRepositories(c echo.Context) error {
	project := c.Param("id")

	_, err := s.store.get("projects", project)
	if err != nil {
		return storeError(c, "projects", project, err)
	}

	return s.list("repositories", map[string]interface{}{"project": project})(c)
}

func (s *Server) createProjectRepository(c echo.Context) error {
	project := c.Param("id")

	_, err := s.store.get("projects", project)
	if err != nil {
		return storeError(c, "projects", project, err)
	}

	return s.create("repositories", map[string]interface{}{"project": project})(c)
}

func (s *Server) issueInviteToken(c echo.Context) error {
	user := c.Param("id")

	_, err := s.store.get("users", user)
	if err != nil {
		return storeError(c, "users", user, err)
	}

	s.mu.Lock()
	token := s.issue()
	s.mu.Unlock()

	err = s.store.put(collInviteTokens, user, map[string]interface{}{"token": token})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, token)
}

func (s *Server) invalidateInviteToken(c echo.Context) error {
	user := c.Param("id")

	_, err := s.store.get("users", user)
	if err != nil {
		return storeError(c, "users", user, err)
	}

	err = s.store.delete(collInviteTokens, user)
	if err != nil && !errors.Is(err, errRecordNotFound) {
		return err
	}

	return c.JSON(http.StatusOK, nil)
}

// InviteToken returns the pending invitation token of a user, if any.
func (s *Server) InviteToken(user string) (string, bool) {
	ref, err := s.store.get(collInviteTokens, user)
	if err != nil {
		return "", false
	}

	return valueString(ref["token"]), true
}

func membershipID(team, user string) string {
	return team + "/" + user
}

func (s *Server) addMember(c echo.Context) error {
	team, user := c.Param("id"), c.Param("user")

	for name, id := range map[string]string{"teams": team, "users": user} {
		_, err := s.store.get(name, id)
		if err != nil {
			return storeError(c, name, id, err)
		}
	}

	err := s.store.put(collTeamMembers, membershipID(team, user), map[string]interface{}{"team_id": team, "user_id": user})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, nil)
}

func (s *Server) removeMember(c echo.Context) error {
	team, user := c.Param("id"), c.Param("user")

	err := s.store.delete(collTeamMembers, membershipID(team, user))
	if err != nil {
		if errors.Is(err, errRecordNotFound) {
			return detail(c, http.StatusNotFound, "KeyError", "User '"+user+"' is not a member of team '"+team+"'")
		}

		return err
	}

	return c.JSON(http.StatusOK, nil)
}

// related lists the records of target referenced by the memberships matching key=id.
func (s *Server) related(c echo.Context, owner, key, ref, target string) error {
	id := c.Param("id")

	_, err := s.store.get(owner, id)
	if err != nil {
		return storeError(c, owner, id, err)
	}

	links, err := s.store.list(collTeamMembers, matchQuery(url.Values{key: {id}}))
	if err != nil {
		return err
	}

	items := make([]map[string]interface{}, 0, len(links))

	for _, link := range links {
		item, err := s.store.get(target, valueString(link[ref]))
		if err == nil {
			items = append(items, item)
		}
	}

	return c.JSON(http.StatusOK, items)
}

func (s *Server) membersOfTeam(c echo.Context) error {
	return s.related(c, "teams", "team_id", "user_id", "users")
}

func (s *Server) teamsOfUser(c echo.Context) error {
	return s.related(c, "users", "user_id", "team_id", "teams")
}

func (s *Server) revokeRole(c echo.Context) error {
	query := c.QueryParams()

	grant := url.Values{}
	for _, key := range []string{"role_id", "user_id", "team_id", "project_id"} {
		grant.Set(key, query.Get(key))
	}

	items, err := s.store.list("role_assignments", matchQuery(grant))
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return detail(c, http.StatusNotFound, "KeyError", "No role assignment matches "+query.Encode())
	}

	for _, item := range items {
		err = s.store.delete("role_assignments", valueString(item["id"]))
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, nil)
}

func (s *Server) stepsOfRun(c echo.Context) error {
	run := c.Param("id")

	_, err := s.store.get("runs", run)
	if err != nil {
		return storeError(c, "runs", run, err)
	}

	return s.list("steps", map[string]interface{}{"pipeline_run_id": run})(c)
}

// runGraph describes the run's steps as nodes and their parent links as edges.
func (s *Server) runGraph(c echo.Context) error {
	run := c.Param("id")

	_, err := s.store.get("runs", run)
	if err != nil {
		return storeError(c, "runs", run, err)
	}

	steps, err := s.store.list("steps", matchQuery(url.Values{"pipeline_run_id": {run}}))
	if err != nil {
		return err
	}

	nodes := make([]map[string]interface{}, 0, len(steps))
	edges := make([]map[string]string, 0)

	for _, step := range steps {
		id := valueString(step["id"])
		nodes = append(nodes, map[string]interface{}{"id": id, "name": step["name"], "status": step["status"]})

		parents, _ := step["parent_step_ids"].([]interface{})
		for _, parent := range parents {
			edges = append(edges, map[string]string{"source": valueString(parent), "target": id})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"run_id": run, "nodes": nodes, "edges": edges})
}

// SetSideEffects records what components reported for a run, keyed by component id.
func (s *Server) SetSideEffects(run string, effects map[string]interface{}) error {
	return s.store.put(collSideEffects, run, effects)
}

func (s *Server) sideEffects(c echo.Context) error {
	run := c.Param("id")

	_, err := s.store.get("runs", run)
	if err != nil {
		return storeError(c, "runs", run, err)
	}

	effects, err := s.store.get(collSideEffects, run)
	if err != nil {
		effects = map[string]interface{}{}
	}

	component := c.QueryParam("component_id")
	componentType := c.QueryParam("component_type")

	for id := range effects {
		if component != "" && id != component {
			delete(effects, id)

			continue
		}

		if componentType != "" {
			item, err := s.store.get("components", id)
			if err != nil || valueString(item["type"]) != componentType {
				delete(effects, id)
			}
		}
	}

	return c.JSON(http.StatusOK, effects)
}

// LinkInput records that a step consumed an artifact under the given input name.
func (s *Server) LinkInput(step, name, artifact string) error {
	inputs, err := s.store.get(collStepInputs, step)
	if err != nil {
		inputs = map[string]interface{}{}
	}

	inputs[name] = artifact

	return s.store.put(collStepInputs, step, inputs)
}

func (s *Server) stepInputs(c echo.Context) error {
	step := c.Param("id")

	_, err := s.store.get("steps", step)
	if err != nil {
		return storeError(c, "steps", step, err)
	}

	links, err := s.store.get(collStepInputs, step)
	if err != nil {
		links = map[string]interface{}{}
	}

	inputs := make(map[string]interface{}, len(links))

	for name, ref := range links {
		artifact, err := s.store.get("artifacts", valueString(ref))
		if err == nil {
			inputs[name] = artifact
		}
	}

	return c.JSON(http.StatusOK, inputs)
}

func (s *Server) stepOutputs(c echo.Context) error {
	step := c.Param("id")

	_, err := s.store.get("steps", step)
	if err != nil {
		return storeError(c, "steps", step, err)
	}

	artifacts, err := s.store.list("artifacts", matchQuery(url.Values{"producer_step_id": {step}}))
	if err != nil {
		return err
	}

	outputs := make(map[string]interface{}, len(artifacts))
	for _, artifact := range artifacts {
		outputs[valueString(artifact["name"])] = artifact
	}

	return c.JSON(http.StatusOK, outputs)
}

func (s *Server) stepStatus(c echo.Context) error {
	step := c.Param("id")

	item, err := s.store.get("steps", step)
	if err != nil {
		return storeError(c, "steps", step, err)
	}

	return c.JSON(http.StatusOK, valueString(item["status"]))
}
