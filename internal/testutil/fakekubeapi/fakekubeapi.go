// Copyright 2021 the Pinniped contributors. All Rights Reserved.
// Copyright 2026 the eksjob contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fakekubeapi contains a *very* simple httptest.Server that can be used to stand in for
// a real Kube API server in tests.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	  resources := map[string]metav1.Object{
//	    // store preexisting resources here
//	    "/api/v1/namespaces/default/pods/some-pod-name": &corev1.Pod{...},
//	  }
//	  server, restConfig := fakekubeapi.Start(t, resources)
//	  client, err := kubeclient.New(kubeclient.WithConfig(restConfig))
//	  // do stuff with client...
//	}
package fakekubeapi

import (
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/watch"
	kubescheme "k8s.io/client-go/kubernetes/scheme"
	restclient "k8s.io/client-go/rest"
)

// Server is the fake API server. All of its state is guarded by one mutex so tests
// may inspect it while a client is talking to it.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	resources   map[string]metav1.Object
	logs        map[string]string
	onCreate    []func(obj metav1.Object)
	watchEvents map[string][][]watch.Event
	requests    []string
	bearerToken string
}

type Option func(*Server)

// WithPodLogs serves the given text for pod log paths,
// e.g. /api/v1/namespaces/default/pods/some-pod-name/log => "hello\n".
func WithPodLogs(logs map[string]string) Option {
	return func(s *Server) {
		for p, l := range logs {
			s.logs[p] = l
		}
	}
}

// WithCreateHook runs f on every created object before it is stored and returned.
func WithCreateHook(f func(obj metav1.Object)) Option {
	return func(s *Server) {
		s.onCreate = append(s.onCreate, f)
	}
}

// WithWatchEvents queues the events sent by the next watch on the collection path,
// e.g. /apis/batch/v1/namespaces/default/jobs. Each call queues one watch. Once the
// queue is drained a watch streams the stored objects as ADDED events.
func WithWatchEvents(collectionPath string, events ...watch.Event) Option {
	return func(s *Server) {
		s.watchEvents[collectionPath] = append(s.watchEvents[collectionPath], events)
	}
}

// WithBearerToken rejects every request that does not carry token with 401 Unauthorized.
func WithBearerToken(token string) Option {
	return func(s *Server) {
		s.bearerToken = token
	}
}

// Start starts an httptest.Server (with TLS) that pretends to be a Kube API server.
//
// The server uses the provided resources map to store API Object's. The map should be from API path
// to Object (e.g., /api/v1/namespaces/default/pods/some-pod-name => &corev1.Pod{}).
//
// Start returns an already started Server and a restclient.Config that can be used to talk
// to the server. The server is closed when the test ends.
//
// Note! Only JSON is spoken and only these following verbs are (partially) supported:
// create, get, list (pods and jobs), watch, delete, and get of the pods/log subresource.
func Start(t *testing.T, resources map[string]metav1.Object, opts ...Option) (*Server, *restclient.Config) {
	t.Helper()

	if resources == nil {
		resources = make(map[string]metav1.Object)
	}

	s := &Server{
		resources:   resources,
		logs:        make(map[string]string),
		watchEvents: make(map[string][][]watch.Event),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewTLSServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)

	restConfig := &restclient.Config{
		Host: s.URL,
		TLSClientConfig: restclient.TLSClientConfig{
			CAData: s.CAData(),
		},
	}
	return s, restConfig
}

// CAData is the PEM encoded certificate of the server.
func (s *Server) CAData() []byte {
	return pem.EncodeToMemory(&pem.Block{Bytes: s.Certificate().Raw, Type: "CERTIFICATE"})
}

// Requests returns "<method> <path>?<query>" for every request seen so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Object returns the stored object at p, if any.
func (s *Server) Object(p string) metav1.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resources[p]
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, strings.TrimSuffix(r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery, "?"))
	s.mu.Unlock()

	var err error
	switch {
	case s.bearerToken != "" && r.Header.Get("Authorization") != "Bearer "+s.bearerToken:
		err = newStatusError(http.StatusUnauthorized, metav1.StatusReasonUnauthorized, "Unauthorized")
	case r.Method == http.MethodGet && r.URL.Query().Get("watch") == "true":
		err = s.handleWatch(w, r)
	case r.Method == http.MethodGet && path.Base(r.URL.Path) == "log":
		err = s.handleLog(w, r)
	case r.Method == http.MethodGet:
		err = s.handleGet(w, r)
	case r.Method == http.MethodPost:
		err = s.handleCreate(w, r)
	case r.Method == http.MethodDelete:
		err = s.handleDelete(w, r)
	default:
		err = newStatusError(http.StatusMethodNotAllowed, metav1.StatusReasonMethodNotAllowed, "check source code for methods supported")
	}
	if err != nil {
		respondError(w, err)
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return newStatusError(http.StatusInternalServerError, metav1.StatusReasonInternalError, "read body: "+err.Error())
	}

	decoded, err := runtime.Decode(kubescheme.Codecs.UniversalDeserializer(), body)
	if err != nil {
		return newStatusError(http.StatusBadRequest, metav1.StatusReasonBadRequest, "decode obj: "+err.Error())
	}
	obj, ok := decoded.(metav1.Object)
	if !ok {
		return newStatusError(http.StatusBadRequest, metav1.StatusReasonBadRequest, fmt.Sprintf("%T is not an object", decoded))
	}

	if ns := namespaceOf(r.URL.Path); ns != "" {
		obj.SetNamespace(ns)
	}

	s.mu.Lock()
	objPath := path.Join(r.URL.Path, obj.GetName())
	if _, exists := s.resources[objPath]; exists {
		s.mu.Unlock()
		return newStatusError(http.StatusConflict, metav1.StatusReasonAlreadyExists, fmt.Sprintf("%q already exists", obj.GetName()))
	}
	for _, f := range s.onCreate {
		f(obj)
	}
	s.resources[objPath] = obj
	s.mu.Unlock()

	return encodeObj(w, http.StatusCreated, decoded)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) error {
	s.mu.Lock()
	obj, found := s.resources[r.URL.Path]
	s.mu.Unlock()
	if found {
		return encodeObj(w, http.StatusOK, obj.(runtime.Object))
	}

	list, err := s.list(r)
	if err != nil {
		return err
	}
	if list == nil {
		return newStatusError(http.StatusNotFound, metav1.StatusReasonNotFound, "not found")
	}
	return encodeObj(w, http.StatusOK, list)
}

func (s *Server) list(r *http.Request) (runtime.Object, error) {
	objs, err := s.selectChildren(r)
	if err != nil {
		return nil, err
	}

	switch path.Base(r.URL.Path) {
	case "pods":
		list := &corev1.PodList{}
		for _, obj := range objs {
			if pod, ok := obj.(*corev1.Pod); ok {
				list.Items = append(list.Items, *pod)
			}
		}
		return list, nil
	case "jobs":
		list := &batchv1.JobList{}
		for _, obj := range objs {
			if job, ok := obj.(*batchv1.Job); ok {
				list.Items = append(list.Items, *job)
			}
		}
		return list, nil
	default:
		return nil, nil
	}
}

// selectChildren returns the stored objects directly under the request path that match its
// label and field selectors, sorted by path.
func (s *Server) selectChildren(r *http.Request) ([]metav1.Object, error) {
	labelSelector, err := labels.Parse(r.URL.Query().Get("labelSelector"))
	if err != nil {
		return nil, newStatusError(http.StatusBadRequest, metav1.StatusReasonBadRequest, err.Error())
	}
	fieldSelector, err := fields.ParseSelector(r.URL.Query().Get("fieldSelector"))
	if err != nil {
		return nil, newStatusError(http.StatusBadRequest, metav1.StatusReasonBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.resources))
	for p := range s.resources {
		if path.Dir(p) == r.URL.Path {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	var objs []metav1.Object
	for _, p := range paths {
		obj := s.resources[p]
		objFields := fields.Set{"metadata.name": obj.GetName(), "metadata.namespace": obj.GetNamespace()}
		if labelSelector.Matches(labels.Set(obj.GetLabels())) && fieldSelector.Matches(objFields) {
			objs = append(objs, obj)
		}
	}
	return objs, nil
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) error {
	s.mu.Lock()
	queued := s.watchEvents[r.URL.Path]
	var events []watch.Event
	if len(queued) > 0 {
		events = queued[0]
		s.watchEvents[r.URL.Path] = queued[1:]
	}
	s.mu.Unlock()

	if events == nil {
		objs, err := s.selectChildren(r)
		if err != nil {
			return err
		}
		for _, obj := range objs {
			events = append(events, watch.Event{Type: watch.Added, Object: obj.(runtime.Object)})
		}
	}

	w.Header().Set("Content-Type", runtime.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	for _, event := range events {
		data, err := runtime.Encode(jsonCodec(), event.Object)
		if err != nil {
			return err
		}
		line, err := json.Marshal(metav1.WatchEvent{Type: string(event.Type), Object: runtime.RawExtension{Raw: data}})
		if err != nil {
			return err
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
	// returning closes the stream, just like a real server does when the watch times out
	return nil
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) error {
	s.mu.Lock()
	text, ok := s.logs[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		return newStatusError(http.StatusNotFound, metav1.StatusReasonNotFound, "no log for "+path.Dir(r.URL.Path))
	}

	w.Header().Set("Content-Type", "text/plain")
	_, err := io.WriteString(w, text)
	return err
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) error {
	s.mu.Lock()
	obj, ok := s.resources[r.URL.Path]
	delete(s.resources, r.URL.Path)
	s.mu.Unlock()
	if !ok {
		return newStatusError(http.StatusNotFound, metav1.StatusReasonNotFound, fmt.Sprintf("no resource with path %q", r.URL.Path))
	}
	return encodeObj(w, http.StatusOK, obj.(runtime.Object))
}

func namespaceOf(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if part == "namespaces" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func jsonCodec() runtime.Codec {
	return kubescheme.Codecs.LegacyCodec(kubescheme.Scheme.PrioritizedVersionsAllGroups()...)
}

func encodeObj(w http.ResponseWriter, code int, obj runtime.Object) error {
	data, err := runtime.Encode(jsonCodec(), obj)
	if err != nil {
		return newStatusError(http.StatusInternalServerError, metav1.StatusReasonInternalError, "encode obj: "+err.Error())
	}

	w.Header().Set("Content-Type", runtime.ContentTypeJSON)
	w.WriteHeader(code)
	_, err = w.Write(data)
	return err
}

type statusError struct {
	status metav1.Status
}

func (e *statusError) Error() string {
	return e.status.Message
}

func newStatusError(code int32, reason metav1.StatusReason, msg string) *statusError {
	return &statusError{status: metav1.Status{
		TypeMeta: metav1.TypeMeta{Kind: "Status", APIVersion: "v1"},
		Status:   metav1.StatusFailure,
		Message:  msg,
		Reason:   reason,
		Code:     code,
	}}
}

// respondError writes a representative Kube Status body so that client-go turns it into an API error.
func respondError(w http.ResponseWriter, err error) {
	se, ok := err.(*statusError) //nolint:errorlint
	if !ok {
		se = newStatusError(http.StatusInternalServerError, metav1.StatusReasonInternalError, err.Error())
	}
	body, _ := json.Marshal(se.status)
	w.Header().Set("Content-Type", runtime.ContentTypeJSON)
	w.WriteHeader(int(se.status.Code))
	_, _ = w.Write(body)
}
