// Package webapp is a small action-based web framework: a route table built on gorilla/mux,
// named actions that receive a Context with session, flash, and cookie state, results that may
// be deferred through a Promise, and html/template views.
//
// It is the black box that package apptest drives. An Application can dispatch requests
// in-process through Match and Invoke, or serve real HTTP through Handler.
package webapp
