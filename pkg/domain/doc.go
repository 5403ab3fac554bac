/*
Package domain holds the core types of the adbot engine: persisted
conversation state (the dialog stack), inbound activities and outbound
replies, recognizer results, the search record filled across turns, and
the sentinel errors shared by every layer.

Types here carry no behavior beyond what their own data can answer;
orchestration lives in pkg/dialog and the root package.
*/
package domain
